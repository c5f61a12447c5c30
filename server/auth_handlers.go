package server

import (
	"net/http"

	"github.com/lintangjaya/go-storefront/auth"
)

// RegisterHandler creates an account and signs the new user in.
func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.RegisterRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		sess := s.loadSession(r)
		user, err := s.deps.Auth.Register(r.Context(), &sess, req, requestMeta(r))

		// The session is persisted on both paths: a failed attempt still
		// consumed the challenge, and that must stick.
		s.saveSession(w, r, sess)

		if err != nil {
			s.respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusCreated, map[string]any{
			"message": "Registration successful",
			"user":    user,
		})
	}
}

// LoginHandler authenticates credentials behind the CAPTCHA gate.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.LoginRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		sess := s.loadSession(r)
		user, err := s.deps.Auth.Login(r.Context(), &sess, req, requestMeta(r))

		s.saveSession(w, r, sess)

		if err != nil {
			s.respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, map[string]any{
			"message": "Login successful",
			"user":    user,
		})
	}
}

// LogoutHandler clears the identity and destroys the session.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.loadSession(r)
		s.deps.Auth.Logout(r.Context(), &sess, requestMeta(r))
		s.destroySession(w, r, sess)

		respondJSON(w, http.StatusOK, map[string]any{"message": "Logout successful"})
	}
}

// AuthStatusHandler reports whether the caller is signed in. It never errors;
// an anonymous session is a normal answer.
func (s *Server) AuthStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.loadSession(r)
		if !sess.Authenticated() {
			respondJSON(w, http.StatusOK, map[string]any{"authenticated": false})
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"authenticated": true,
			"user":          sess.User,
		})
	}
}

// ProfileHandler returns the persisted user behind the session.
func (s *Server) ProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFromContext(r.Context())
		user, err := s.deps.Auth.Profile(r.Context(), sess)
		if err != nil {
			s.respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"user": user})
	}
}

// PasswordChangeHandler updates the password of the signed-in user.
func (s *Server) PasswordChangeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.PasswordChangeRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		sess := sessionFromContext(r.Context())
		if err := s.deps.Auth.ChangePassword(r.Context(), sess, req, requestMeta(r)); err != nil {
			s.respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, map[string]any{"message": "Password changed successfully"})
	}
}
