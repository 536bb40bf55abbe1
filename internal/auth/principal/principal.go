// Package principal keeps the session's identity bookkeeping and attaches
// capabilities whenever an identity is loaded or changed.
package principal

import (
	"context"

	"ditroboticstw/internal/auth"
	"ditroboticstw/internal/auth/resolver"
	"ditroboticstw/internal/logger"
	"ditroboticstw/internal/session"
)

type Manager struct {
	resolver resolver.Resolver
}

func NewManager(r resolver.Resolver) *Manager {
	return &Manager{resolver: r}
}

// IdentityChanged records p in the session (or clears the record for the
// anonymous principal) and returns p with its capabilities resolved.
func (m *Manager) IdentityChanged(ctx context.Context, sess *session.Session, p auth.Principal) auth.Principal {
	if p.IsAnonymous() {
		sess.Delete(session.KeyIdentityID)
		sess.Delete(session.KeyIdentityAuthType)
	} else {
		sess.Set(session.KeyIdentityID, p.ID)
		sess.Set(session.KeyIdentityAuthType, p.AuthType)
	}

	loaded := m.provide(sess, p)

	logger.Debug("identity changed", map[string]any{
		"identity":     loaded.ID,
		"capabilities": loaded.Capabilities.List(),
	})

	return loaded
}

// Load rebuilds the principal stored in the session.
func (m *Manager) Load(sess *session.Session) auth.Principal {
	p := auth.AnonymousPrincipal()
	if id := sess.Get(session.KeyIdentityID); id != "" {
		p.ID = id
		p.AuthType = sess.Get(session.KeyIdentityAuthType)
	}
	return m.provide(sess, p)
}

// provide attaches capabilities. Roles follow the session's external id,
// so a session without one is granted nothing.
func (m *Manager) provide(sess *session.Session, p auth.Principal) auth.Principal {
	p.Capabilities = m.resolver.Resolve(sess.Get(session.KeyExternalID))
	return p
}
