package session

import (
	"context"
	"time"
)

// Session field names.
const (
	KeyToken            = "token"
	KeyUsername         = "username"
	KeyExternalID       = "external_id"
	KeyIdentityID       = "identity.id"
	KeyIdentityAuthType = "identity.auth_type"

	// KeyUserID marks the session as logged in for the session-auth layer.
	KeyUserID = "user_id"
)

// AuthKeys are removed on logout.
var AuthKeys = []string{
	KeyToken,
	KeyExternalID,
	KeyUsername,
	KeyIdentityID,
	KeyIdentityAuthType,
}

// Session is the per-browser key/value record.
type Session struct {
	ID        string            `json:"id"`
	Values    map[string]string `json:"values"`
	ExpiresAt time.Time         `json:"expires_at"`

	isNew bool
}

// New returns an empty, not yet persisted session.
func New(id string, expiresAt time.Time) *Session {
	return &Session{
		ID:        id,
		Values:    map[string]string{},
		ExpiresAt: expiresAt,
		isNew:     true,
	}
}

// IsNew reports whether the session has never been saved.
func (s *Session) IsNew() bool {
	return s.isNew
}

func (s *Session) Get(key string) string {
	return s.Values[key]
}

func (s *Session) Has(key string) bool {
	_, ok := s.Values[key]
	return ok
}

func (s *Session) Set(key, value string) {
	if s.Values == nil {
		s.Values = map[string]string{}
	}
	s.Values[key] = value
}

// Delete removes key. Removing an absent key is a no-op.
func (s *Session) Delete(key string) {
	delete(s.Values, key)
}

// Authenticated holds only when token, username and external id are all
// present and non-empty.
func (s *Session) Authenticated() bool {
	return s.Get(KeyToken) != "" &&
		s.Get(KeyUsername) != "" &&
		s.Get(KeyExternalID) != ""
}

// Login marks userID as logged in for the session-auth layer.
func (s *Session) Login(userID string) {
	s.Set(KeyUserID, userID)
}

// Deauthenticate clears the session-auth marker.
func (s *Session) Deauthenticate() {
	s.Delete(KeyUserID)
}

// Store defines how sessions are stored and retrieved.
// Get returns (nil, nil) for unknown or expired sessions.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Update(ctx context.Context, s Session) error
	Delete(ctx context.Context, sessionID string) error
}
