package principal

import (
	"context"
	"testing"
	"time"

	"ditroboticstw/internal/auth"
	"ditroboticstw/internal/auth/resolver"
	"ditroboticstw/internal/session"

	"github.com/stretchr/testify/assert"
)

func newSession(externalID string) *session.Session {
	s := session.New("sid", time.Now().Add(time.Hour))
	if externalID != "" {
		s.Set(session.KeyExternalID, externalID)
	}
	return s
}

func TestIdentityChanged_StaffBecomesBlogger(t *testing.T) {
	m := NewManager(resolver.NewStaffList([]string{"42"}))
	sess := newSession("42")

	p := m.IdentityChanged(context.Background(), sess, auth.Principal{ID: "42", AuthType: auth.AuthTypeFacebook})

	assert.True(t, p.Can(auth.CapabilityBlogger))
	assert.Equal(t, "42", sess.Get(session.KeyIdentityID))
	assert.Equal(t, auth.AuthTypeFacebook, sess.Get(session.KeyIdentityAuthType))
}

func TestIdentityChanged_NonStaffGetsNothing(t *testing.T) {
	m := NewManager(resolver.NewStaffList([]string{"42"}))
	sess := newSession("7")

	p := m.IdentityChanged(context.Background(), sess, auth.Principal{ID: "7", AuthType: auth.AuthTypeFacebook})
	assert.Empty(t, p.Capabilities)
}

func TestIdentityChanged_AnonymousClearsBookkeeping(t *testing.T) {
	m := NewManager(resolver.NewStaffList([]string{"42"}))
	sess := newSession("")
	sess.Set(session.KeyIdentityID, "42")
	sess.Set(session.KeyIdentityAuthType, auth.AuthTypeFacebook)

	p := m.IdentityChanged(context.Background(), sess, auth.AnonymousPrincipal())

	assert.True(t, p.IsAnonymous())
	assert.Empty(t, p.Capabilities)
	assert.False(t, sess.Has(session.KeyIdentityID))
	assert.False(t, sess.Has(session.KeyIdentityAuthType))
}

func TestLoad_RecomputesEachTime(t *testing.T) {
	m := NewManager(resolver.NewStaffList([]string{"42"}))
	sess := newSession("42")
	sess.Set(session.KeyIdentityID, "42")
	sess.Set(session.KeyIdentityAuthType, auth.AuthTypeFacebook)

	p := m.Load(sess)
	assert.Equal(t, "42", p.ID)
	assert.True(t, p.Can(auth.CapabilityBlogger))

	// grants are not persisted: mutating one result does not leak into the next
	p.Capabilities.Add("admin")
	assert.False(t, m.Load(sess).Can("admin"))

	sess.Delete(session.KeyExternalID)
	assert.False(t, m.Load(sess).Can(auth.CapabilityBlogger))
}

func TestLoad_EmptySessionIsAnonymous(t *testing.T) {
	m := NewManager(resolver.NewStaffList(resolver.DefaultStaff))
	p := m.Load(newSession(""))
	assert.True(t, p.IsAnonymous())
	assert.Empty(t, p.Capabilities)
}
