package middleware

import (
	"net/http"

	"ditroboticstw/internal/auth"
	"ditroboticstw/internal/logger"
	"ditroboticstw/internal/session"
)

// PrincipalLoader rebuilds the request principal from the session.
type PrincipalLoader interface {
	Load(sess *session.Session) auth.Principal
}

type AuthMiddleware struct {
	Sessions   *session.Manager
	Principals PrincipalLoader
	Users      *auth.UserLoader
}

func NewAuthMiddleware(
	sessions *session.Manager,
	principals PrincipalLoader,
	users *auth.UserLoader,
) *AuthMiddleware {
	return &AuthMiddleware{
		Sessions:   sessions,
		Principals: principals,
		Users:      users,
	}
}

// LoadSession attaches the browser session, the principal with its
// capabilities and the logged-in user (if any) to the request context.
func (a *AuthMiddleware) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := a.Sessions.Load(r)
		if err != nil {
			logger.Error("session load failed", map[string]any{
				"error": err.Error(),
				"path":  r.URL.Path,
			})
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		ctx := session.NewContext(r.Context(), sess)
		ctx = auth.WithPrincipal(ctx, a.Principals.Load(sess))
		if u := a.Users.LoadUser(sess.Get(session.KeyUserID)); u != nil {
			ctx = auth.WithUser(ctx, u)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireSession rejects with 403 and no body unless the session holds
// token, username and external id.
func (a *AuthMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := session.FromContext(r.Context())
		if !ok || !sess.Authenticated() {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
