package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ditroboticstw/internal/logger"
)

// Manager loads and persists browser sessions: the cookie carries a signed
// session id, the Store holds the values.
type Manager struct {
	store  Store
	codec  *CookieCodec
	ttl    time.Duration
	cookie CookieOptions
	now    func() time.Time
}

func NewManager(store Store, codec *CookieCodec, ttl time.Duration, cookie CookieOptions) *Manager {
	return &Manager{
		store:  store,
		codec:  codec,
		ttl:    ttl,
		cookie: cookie,
		now:    time.Now,
	}
}

// Load returns the session referenced by the request cookie. A missing,
// forged, expired or unknown cookie yields a fresh unsaved session; only
// store failures are returned as errors.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		sessionID, err := m.codec.Decode(cookie.Value)
		if err != nil {
			logger.Debug("session cookie rejected", map[string]any{
				"error": err.Error(),
			})
		} else {
			s, err := m.store.Get(r.Context(), sessionID)
			if err != nil {
				return nil, fmt.Errorf("session: load: %w", err)
			}
			if s != nil {
				return s, nil
			}
		}
	}

	return m.fresh()
}

// Save persists s and (re)issues the cookie. The expiry slides forward on
// every save.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, s *Session) error {
	if s == nil {
		return errors.New("session: nil session")
	}

	s.ExpiresAt = m.now().Add(m.ttl)

	var err error
	if s.IsNew() {
		err = m.store.Create(ctx, *s)
	} else {
		err = m.store.Update(ctx, *s)
	}
	if err != nil {
		return fmt.Errorf("session: save: %w", err)
	}
	s.isNew = false

	value, err := m.codec.Encode(s.ID, s.ExpiresAt)
	if err != nil {
		return err
	}
	SetCookie(w, value, s.ExpiresAt, m.cookie)
	return nil
}

// Destroy deletes the stored session and clears the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, s *Session) error {
	if s != nil && !s.IsNew() {
		if err := m.store.Delete(ctx, s.ID); err != nil {
			return fmt.Errorf("session: destroy: %w", err)
		}
	}
	ClearCookie(w, m.cookie)
	return nil
}

func (m *Manager) fresh() (*Session, error) {
	id, err := GenerateID()
	if err != nil {
		return nil, err
	}
	return New(id, m.now().Add(m.ttl)), nil
}

type sessionKeyType struct{}

var sessionKey = sessionKeyType{}

func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// FromContext returns the session attached by the session middleware.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey).(*Session)
	return s, ok && s != nil
}
