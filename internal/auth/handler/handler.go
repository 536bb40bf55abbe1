package handler

import (
	"context"
	"errors"
	"net/http"

	"ditroboticstw/internal/auth"
	"ditroboticstw/internal/auth/provider"
	"ditroboticstw/internal/logger"
	"ditroboticstw/internal/metrics"
	"ditroboticstw/internal/session"

	"github.com/gin-gonic/gin"
)

// IdentityHook is invoked synchronously after the session's identity has
// changed, on login and on logout.
type IdentityHook interface {
	IdentityChanged(ctx context.Context, sess *session.Session, p auth.Principal) auth.Principal
}

type Handler struct {
	provider     provider.OAuthProvider
	sessions     *session.Manager
	hook         IdentityHook
	secureCookie bool
}

func NewHandler(
	p provider.OAuthProvider,
	sessions *session.Manager,
	hook IdentityHook,
	secureCookie bool,
) *Handler {
	return &Handler{
		provider:     p,
		sessions:     sessions,
		hook:         hook,
		secureCookie: secureCookie,
	}
}

// RegisterRoutes mounts the login flow. guards run in front of /login and
// /authorized only.
func (h *Handler) RegisterRoutes(r gin.IRouter, guards ...gin.HandlerFunc) {
	r.GET("/login", chain(guards, h.login)...)
	r.GET("/authorized", chain(guards, h.callback)...)
	r.GET("/logout", h.logout)
}

func chain(guards []gin.HandlerFunc, last gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(guards)+1)
	out = append(out, guards...)
	return append(out, last)
}

func (h *Handler) login(c *gin.Context) {
	state, err := h.generateState(c)
	if err != nil {
		logger.Error("oauth state generation failed", map[string]any{
			"error": err.Error(),
		})
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.Redirect(http.StatusFound, h.provider.AuthCodeURL(state))
}

func (h *Handler) callback(c *gin.Context) {
	ctx := c.Request.Context()
	providerName := h.provider.Name()

	// CASE 1: the user refused, no grant was issued
	code := c.Query("code")
	if code == "" {
		reason := c.Query("error_reason")
		desc := c.Query("error_description")

		logger.Warn("oauth callback denied", map[string]any{
			"provider": providerName,
			"reason":   reason,
			"desc":     desc,
		})
		metrics.RecordLogin(metrics.LoginDenied)

		c.String(http.StatusOK, "Access denied: reason=%s error=%s", reason, desc)
		return
	}

	if !h.validateState(c) {
		metrics.RecordLogin(metrics.LoginInvalidState)
		c.String(http.StatusBadRequest, "invalid state")
		return
	}
	h.clearState(c)

	sess, ok := session.FromContext(ctx)
	if !ok {
		h.fail(c, errors.New("no session in request context"))
		return
	}

	// CASE 2: normal OAuth callback
	token, err := h.provider.ExchangeCode(ctx, code)
	if err != nil {
		h.exchangeFailed(c, err)
		return
	}
	sess.Set(session.KeyToken, token.AccessToken)

	identity, err := h.provider.Me(ctx, token)
	if err != nil {
		h.exchangeFailed(c, err)
		return
	}

	username := identity.DisplayName
	if username == "" {
		username = identity.ExternalID
	}
	sess.Set(session.KeyUsername, username)
	sess.Set(session.KeyExternalID, identity.ExternalID)
	sess.Login(identity.ExternalID)

	p := h.hook.IdentityChanged(ctx, sess, auth.Principal{
		ID:       identity.ExternalID,
		AuthType: auth.AuthTypeFacebook,
	})

	if err := h.sessions.Save(ctx, c.Writer, sess); err != nil {
		h.fail(c, err)
		return
	}

	logger.Info("login succeeded", map[string]any{
		"provider":     providerName,
		"external_id":  identity.ExternalID,
		"capabilities": p.Capabilities.List(),
		"ip":           c.ClientIP(),
	})
	metrics.RecordLogin(metrics.LoginSuccess)

	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) logout(c *gin.Context) {
	ctx := c.Request.Context()

	sess, ok := session.FromContext(ctx)
	if !ok {
		h.fail(c, errors.New("no session in request context"))
		return
	}

	externalID := sess.Get(session.KeyExternalID)

	for _, key := range session.AuthKeys {
		sess.Delete(key)
	}
	sess.Deauthenticate()
	h.hook.IdentityChanged(ctx, sess, auth.AnonymousPrincipal())

	// nothing to persist for a visitor who never had a session
	if !sess.IsNew() {
		if err := h.sessions.Save(ctx, c.Writer, sess); err != nil {
			h.fail(c, err)
			return
		}
	}

	logger.Info("logout", map[string]any{
		"external_id": externalID,
		"ip":          c.ClientIP(),
	})
	metrics.RecordLogout()

	c.Redirect(http.StatusFound, "/")
}

// Profile renders the logged-in visitor's page. It must be mounted behind
// a gate that requires an authenticated session.
func (h *Handler) Profile(c *gin.Context) {
	ctx := c.Request.Context()

	sess, ok := session.FromContext(ctx)
	if !ok || !sess.Authenticated() {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	p := auth.PrincipalFromContext(ctx)
	c.HTML(http.StatusOK, "profile.html", gin.H{
		"Title":        "Profile",
		"Principal":    p,
		"User":         auth.UserFromContext(ctx),
		"Username":     sess.Get(session.KeyUsername),
		"ExternalID":   sess.Get(session.KeyExternalID),
		"Capabilities": p.Capabilities.List(),
	})
}

// exchangeFailed answers provider-reported errors in plain text and
// everything else with a bare 500.
func (h *Handler) exchangeFailed(c *gin.Context, err error) {
	var perr *provider.Error
	if errors.As(err, &perr) {
		logger.Warn("oauth provider error", map[string]any{
			"provider": perr.Provider,
			"type":     perr.Type,
			"code":     perr.Code,
			"error":    perr.Message,
		})
		metrics.RecordLogin(metrics.LoginProviderError)

		c.String(http.StatusOK, "Access denied: %s", perr.Message)
		return
	}

	h.fail(c, err)
}

func (h *Handler) fail(c *gin.Context, err error) {
	logger.Error("oauth callback failed", map[string]any{
		"provider": h.provider.Name(),
		"error":    err.Error(),
	})
	metrics.RecordLogin(metrics.LoginError)
	_ = c.Error(err)
	c.AbortWithStatus(http.StatusInternalServerError)
}
