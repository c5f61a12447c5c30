package sessions

import (
	"time"

	"github.com/lintangjaya/go-storefront/captcha"
	"github.com/lintangjaya/go-storefront/users"
)

// User is the session-safe projection of an authenticated user. It never
// carries the password hash.
type User struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Email string         `json:"email"`
	Role  users.RoleType `json:"role"`
}

// Session is the server-side state keyed by the cookie-borne session ID. It
// holds transient CAPTCHA state and, after login, the authenticated identity.
// At most one live challenge exists per session.
type Session struct {
	ID        string             `json:"id"`                 // Cookie token (UUID)
	User      *User              `json:"user,omitempty"`     // Set after successful login
	Captcha   *captcha.Challenge `json:"captcha,omitempty"`  // Pending challenge, single use
	CreatedAt time.Time          `json:"created_at"`
	ExpiresAt time.Time          `json:"expires_at"`
}

// Authenticated reports whether a user identity is attached to the session.
func (s *Session) Authenticated() bool {
	return s.User != nil
}

// ClearCaptcha consumes the pending challenge. Called after every validation
// attempt regardless of outcome.
func (s *Session) ClearCaptcha() {
	s.Captcha = nil
}

// Expired reports whether the session itself has lapsed at the given time.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
