package server

import (
	"context"
	"net/http"

	"github.com/lintangjaya/go-storefront/sessions"
	"github.com/lintangjaya/go-storefront/users"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeySession stores the authenticated request session
const ContextKeySession ContextKey = "session"

// RequireAuth gates a route on an authenticated session. The loaded session is
// injected into the request context for downstream handlers.
func (s *Server) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.loadSession(r)
		if !sess.Authenticated() {
			respondError(w, http.StatusUnauthorized, "Please login to access this resource")
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeySession, &sess)
		next(w, r.WithContext(ctx))
	}
}

// RequireAdmin gates a route on the ADMIN role. Must be composed after
// RequireAuth: authentication is checked before authorization, so an
// unauthenticated caller sees 401, never 403.
func (s *Server) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFromContext(r.Context())
		if sess == nil || !sess.Authenticated() {
			respondError(w, http.StatusUnauthorized, "Please login to access this resource")
			return
		}
		if sess.User.Role != users.RoleAdmin {
			respondError(w, http.StatusForbidden, "Administrator access required")
			return
		}
		next(w, r)
	}
}

func sessionFromContext(ctx context.Context) *sessions.Session {
	sess, _ := ctx.Value(ContextKeySession).(*sessions.Session)
	return sess
}
