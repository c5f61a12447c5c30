package server

import (
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/lintangjaya/go-storefront/auth"
	"github.com/lintangjaya/go-storefront/sessions"
	"github.com/rs/zerolog/log"
)

// loadSession resolves the request's session from its cookie, minting a fresh
// one when the cookie is absent, unknown, or points at a lapsed session.
// Lapsed sessions are deleted on sight rather than waiting for store eviction.
func (s *Server) loadSession(r *http.Request) sessions.Session {
	cookie, err := r.Cookie(s.config.GetSessionCookieName())
	if err == nil && cookie.Value != "" {
		sess, err := s.deps.Sessions.Get(r.Context(), cookie.Value)
		if err == nil {
			if !sess.Expired(s.nowTime()) {
				return sess
			}
			_ = s.deps.Sessions.Delete(r.Context(), cookie.Value)
		}
	}

	now := s.nowTime()
	return sessions.Session{
		ID:        uuid.New().String(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.config.GetSessionTTL()),
	}
}

// saveSession persists the session and refreshes the cookie. Must be called
// before the response body is written.
func (s *Server) saveSession(w http.ResponseWriter, r *http.Request, sess sessions.Session) {
	if err := s.deps.Sessions.Upsert(r.Context(), sess); err != nil {
		log.Err(err).Str("session_id", sess.ID).Msg("failed to persist session")
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.config.GetSessionCookieName(),
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.config.GetSessionCookieSecure(),
		SameSite: http.SameSiteLaxMode,
		Expires:  sess.ExpiresAt,
	})
}

// destroySession removes the session record and expires the cookie.
func (s *Server) destroySession(w http.ResponseWriter, r *http.Request, sess sessions.Session) {
	if err := s.deps.Sessions.Delete(r.Context(), sess.ID); err != nil {
		log.Err(err).Str("session_id", sess.ID).Msg("failed to delete session")
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.config.GetSessionCookieName(),
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.config.GetSessionCookieSecure(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// requestMeta extracts the audit attributes from the request.
func requestMeta(r *http.Request) auth.RequestMeta {
	return auth.RequestMeta{
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	}
}

func clientIP(r *http.Request) string {
	// Trust the first hop of X-Forwarded-For when behind a proxy.
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.Index(fwd, ","); idx != -1 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
