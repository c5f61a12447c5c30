package auth

import "errors"

// Sentinel errors for the auth flow. Messages are deliberately generic:
// CAPTCHA failures never say whether the challenge expired or mismatched, and
// credential failures never say whether the email exists.
var (
	ErrInvalidCaptcha     = errors.New("invalid or expired captcha")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRegistrationFailed = errors.New("registration failed")
	ErrNotAuthenticated   = errors.New("please login to access this resource")
)
