package auth

import (
	"regexp"
	"strings"

	"github.com/lintangjaya/go-storefront/internal/errorz"
	"github.com/lintangjaya/go-storefront/users"
)

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	nameRegex  = regexp.MustCompile(`^[\p{L} ]+$`)
)

// Validator provides centralized input validation for the auth flows. Every
// rule is applied so a failing request reports all bad fields at once, not
// just the first.
type Validator struct{}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateRegistration checks the registration input shape.
func (v *Validator) ValidateRegistration(req RegisterRequest) error {
	ve := &errorz.ValidationError{}

	name := strings.TrimSpace(req.Name)
	switch {
	case len(name) < 2:
		ve.Add("name", "name must be at least 2 characters")
	case len(name) > 50:
		ve.Add("name", "name must be at most 50 characters")
	case !nameRegex.MatchString(name):
		ve.Add("name", "name may only contain letters and spaces")
	}

	v.validateEmail(ve, req.Email)

	if err := users.ValidatePasswordStrength(req.Password); err != nil {
		ve.Add("password", err.Error())
	}
	if req.ConfirmPassword != req.Password {
		ve.Add("confirmPassword", "passwords don't match")
	}

	if req.Role != "" && !req.Role.Valid() {
		ve.Add("role", "role must be ADMIN or CUSTOMER")
	}

	return ve.ErrOrNil()
}

// ValidateLogin checks the login input shape. Email and password are rejected
// early when missing; credentials themselves are checked later.
func (v *Validator) ValidateLogin(req LoginRequest) error {
	ve := &errorz.ValidationError{}

	v.validateEmail(ve, req.Email)

	if req.Password == "" {
		ve.Add("password", "password is required")
	}

	return ve.ErrOrNil()
}

// ValidatePasswordChange checks the change-password input shape.
func (v *Validator) ValidatePasswordChange(req PasswordChangeRequest) error {
	ve := &errorz.ValidationError{}

	if req.CurrentPassword == "" {
		ve.Add("currentPassword", "current password is required")
	}
	if err := users.ValidatePasswordStrength(req.NewPassword); err != nil {
		ve.Add("newPassword", err.Error())
	}
	if req.ConfirmPassword != req.NewPassword {
		ve.Add("confirmPassword", "passwords don't match")
	}

	return ve.ErrOrNil()
}

func (v *Validator) validateEmail(ve *errorz.ValidationError, email string) {
	email = strings.TrimSpace(email)
	if email == "" {
		ve.Add("email", "email is required")
		return
	}
	if !emailRegex.MatchString(email) {
		ve.Add("email", "invalid email address")
	}
}

// NormalizeEmail is the canonical form used for lookups and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
