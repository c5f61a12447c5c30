package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lintangjaya/go-storefront/audit"
	"github.com/lintangjaya/go-storefront/sessions"
	"github.com/lintangjaya/go-storefront/users"
	"github.com/pkg/errors"
)

const (
	// DefaultSessionTTL is the cookie/session lifetime for a plain login.
	DefaultSessionTTL = 24 * time.Hour
	// DefaultRememberMeTTL extends the session when the user opts in.
	DefaultRememberMeTTL = 30 * 24 * time.Hour
)

// RequestMeta carries the request attributes recorded with every audit event.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// RegisterRequest is the registration input. Credentials are validated and
// discarded; nothing here is persisted as-is.
type RegisterRequest struct {
	Name            string         `json:"name"`
	Email           string         `json:"email"`
	Password        string         `json:"password"`
	ConfirmPassword string         `json:"confirmPassword"`
	Role            users.RoleType `json:"role,omitempty"`
	Captcha         string         `json:"captcha"`
	CaptchaToken    string         `json:"captchaToken,omitempty"`
}

// LoginRequest is the login input.
type LoginRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	RememberMe   bool   `json:"rememberMe,omitempty"`
	Captcha      string `json:"captcha"`
	CaptchaToken string `json:"captchaToken,omitempty"`
}

// PasswordChangeRequest is the change-password input for an authenticated user.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Service orchestrates registration, login and the CAPTCHA gate. Sessions are
// passed in explicitly as a capability: handlers own loading and saving them,
// which keeps the service testable without an HTTP layer.
type Service struct {
	users       users.UserRepo
	audit       *audit.Logger
	verifier    ChallengeVerifier
	validator   *Validator
	sessionTTL  time.Duration
	rememberTTL time.Duration
	nowTime     func() time.Time // nowTime function (injectable for testing)
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// WithSessionTTLs overrides the plain and remember-me session lifetimes.
func WithSessionTTLs(session, remember time.Duration) ServiceOption {
	return func(s *Service) {
		s.sessionTTL = session
		s.rememberTTL = remember
	}
}

// NewService initializes the auth Service with required dependencies.
// Optional configuration can be provided via options (e.g., WithNowTime for
// testing).
func NewService(userRepo users.UserRepo, auditLogger *audit.Logger, verifier ChallengeVerifier, options ...ServiceOption) (*Service, error) {
	if userRepo == nil {
		return nil, errors.New("[NewService] user repo is required")
	}
	if auditLogger == nil {
		return nil, errors.New("[NewService] audit logger is required")
	}
	if verifier == nil {
		return nil, errors.New("[NewService] challenge verifier is required")
	}

	s := &Service{
		users:       userRepo,
		audit:       auditLogger,
		verifier:    verifier,
		validator:   NewValidator(),
		sessionTTL:  DefaultSessionTTL,
		rememberTTL: DefaultRememberMeTTL,
		nowTime:     time.Now,
	}

	for _, opt := range options {
		opt(s)
	}

	return s, nil
}

// Register validates and creates a new account, then signs the user in on the
// given session (auto-login). Duplicate emails fail with a generic
// registration error so the endpoint cannot be used to enumerate accounts.
func (s *Service) Register(ctx context.Context, sess *sessions.Session, req RegisterRequest, meta RequestMeta) (*sessions.User, error) {
	if err := s.validator.ValidateRegistration(req); err != nil {
		return nil, err
	}

	email := NormalizeEmail(req.Email)

	if !s.verifyChallenge(ctx, sess, Proof{Answer: req.Captcha, Token: req.CaptchaToken}) {
		s.audit.Log(audit.ActionRegisterFailed, "", email,
			"Registration rejected: captcha verification failed", meta.IPAddress, meta.UserAgent)
		return nil, ErrInvalidCaptcha
	}

	role := req.Role
	if role == "" {
		role = users.RoleCustomer
	}

	if _, err := s.users.GetByEmail(email); err == nil {
		s.audit.Log(audit.ActionRegisterFailed, "", email,
			"Registration rejected: email already registered", meta.IPAddress, meta.UserAgent)
		return nil, ErrRegistrationFailed
	} else if !errors.Is(err, users.ErrNotFound) {
		return nil, errors.Wrap(err, "[Service.Register] users.GetByEmail")
	}

	passwordHash, err := users.HashPassword(req.Password)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Register] users.HashPassword")
	}

	user := &users.User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    s.nowTime(),
	}

	if err := s.users.Create(user); err != nil {
		if errors.Is(err, users.ErrDuplicateEmail) {
			s.audit.Log(audit.ActionRegisterFailed, "", email,
				"Registration rejected: email already registered", meta.IPAddress, meta.UserAgent)
			return nil, ErrRegistrationFailed
		}
		return nil, errors.Wrap(err, "[Service.Register] users.Create")
	}

	sessionUser := sessionProjection(user)
	s.establishSession(sess, sessionUser, false)

	s.audit.Log(audit.ActionRegister, user.ID, user.Email,
		"User registered successfully", meta.IPAddress, meta.UserAgent)

	return sessionUser, nil
}

// Login checks the CAPTCHA proof, then the credentials, and establishes the
// session on success. Unknown email and wrong password fail identically.
func (s *Service) Login(ctx context.Context, sess *sessions.Session, req LoginRequest, meta RequestMeta) (*sessions.User, error) {
	if err := s.validator.ValidateLogin(req); err != nil {
		return nil, err
	}

	email := NormalizeEmail(req.Email)

	if !s.verifyChallenge(ctx, sess, Proof{Answer: req.Captcha, Token: req.CaptchaToken}) {
		s.audit.Log(audit.ActionLoginFailed, "", email,
			"Login rejected: captcha verification failed", meta.IPAddress, meta.UserAgent)
		return nil, ErrInvalidCaptcha
	}

	user, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			s.audit.Log(audit.ActionLoginFailed, "", email,
				"Invalid login credentials", meta.IPAddress, meta.UserAgent)
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "[Service.Login] users.GetByEmail")
	}

	if !users.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.audit.Log(audit.ActionLoginFailed, "", email,
			"Invalid login credentials", meta.IPAddress, meta.UserAgent)
		return nil, ErrInvalidCredentials
	}

	sessionUser := sessionProjection(user)
	s.establishSession(sess, sessionUser, req.RememberMe)

	s.audit.Log(audit.ActionLogin, user.ID, user.Email,
		fmt.Sprintf("User logged in successfully (remember me: %t)", req.RememberMe),
		meta.IPAddress, meta.UserAgent)

	return sessionUser, nil
}

// Logout clears the authenticated identity from the session. Destroying the
// session record and cookie is the transport layer's job.
func (s *Service) Logout(_ context.Context, sess *sessions.Session, meta RequestMeta) {
	if sess == nil || sess.User == nil {
		return
	}
	s.audit.Log(audit.ActionLogout, sess.User.ID, sess.User.Email,
		"User logged out", meta.IPAddress, meta.UserAgent)
	sess.User = nil
}

// Profile returns the persisted user behind the session identity.
func (s *Service) Profile(_ context.Context, sess *sessions.Session) (*users.User, error) {
	if sess == nil || !sess.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	user, err := s.users.GetByID(sess.User.ID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, errors.Wrap(err, "[Service.Profile] users.GetByID")
	}
	return user, nil
}

// ChangePassword re-verifies the current password before storing a new hash.
func (s *Service) ChangePassword(_ context.Context, sess *sessions.Session, req PasswordChangeRequest, meta RequestMeta) error {
	if sess == nil || !sess.Authenticated() {
		return ErrNotAuthenticated
	}
	if err := s.validator.ValidatePasswordChange(req); err != nil {
		return err
	}

	user, err := s.users.GetByID(sess.User.ID)
	if err != nil {
		return errors.Wrap(err, "[Service.ChangePassword] users.GetByID")
	}

	if !users.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	passwordHash, err := users.HashPassword(req.NewPassword)
	if err != nil {
		return errors.Wrap(err, "[Service.ChangePassword] users.HashPassword")
	}
	if err := s.users.UpdatePassword(user.ID, passwordHash); err != nil {
		return errors.Wrap(err, "[Service.ChangePassword] users.UpdatePassword")
	}

	s.audit.Log(audit.ActionPasswordChanged, user.ID, user.Email,
		"User changed password", meta.IPAddress, meta.UserAgent)
	return nil
}

// verifyChallenge runs the configured verifier and consumes the session-stored
// challenge. Challenges are single use: any attempt, pass or fail, clears the
// pending challenge so a retry needs a fresh one.
func (s *Service) verifyChallenge(ctx context.Context, sess *sessions.Session, proof Proof) bool {
	ok := s.verifier.Verify(ctx, sess, proof)
	if sess != nil {
		sess.ClearCaptcha()
	}
	return ok
}

func (s *Service) establishSession(sess *sessions.Session, user *sessions.User, rememberMe bool) {
	if sess == nil {
		return
	}
	sess.User = user
	ttl := s.sessionTTL
	if rememberMe {
		ttl = s.rememberTTL
	}
	sess.ExpiresAt = s.nowTime().Add(ttl)
}

func sessionProjection(user *users.User) *sessions.User {
	return &sessions.User{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}
}
