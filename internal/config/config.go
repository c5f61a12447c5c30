package config

import "time"

type Config interface {
	EnvConfig
	CorsConfig
	SessionConfig
	CaptchaConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetDatabasePath() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type SessionConfig interface {
	GetSessionCookieName() string
	GetSessionCookieSecure() bool
	GetSessionSecret() string
	GetSessionTTL() time.Duration
	GetRememberMeTTL() time.Duration
	GetSessionStore() string // "memory" or "redis"
	GetRedisAddr() string
	GetRedisPassword() string
}

type CaptchaConfig interface {
	GetCaptchaLength() int
	GetCaptchaTTL() time.Duration
	GetCaptchaVerifier() string // "session", "token" or "recaptcha"
	GetReCaptchaSecret() string
}

type mainConfig struct {
	EnvVars
	Cors
	Session
	Captcha
}

func New() Config {
	return mainConfig{}
}
