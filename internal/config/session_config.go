package config

import "time"

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetSessionCookieName() string {
	return GetEnv("SESSION_COOKIE_NAME", "session_id")
}

func (Session) GetSessionCookieSecure() bool {
	return GetEnv("SESSION_COOKIE_SECURE", "false") == "true"
}

func (Session) GetSessionSecret() string {
	return GetEnv("SESSION_SECRET", "")
}

func (Session) GetSessionTTL() time.Duration {
	return durationEnv("SESSION_TTL", 24*time.Hour)
}

func (Session) GetRememberMeTTL() time.Duration {
	return durationEnv("REMEMBER_ME_TTL", 30*24*time.Hour)
}

func (Session) GetSessionStore() string {
	return GetEnv("SESSION_STORE", "memory")
}

func (Session) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Session) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func durationEnv(envVar string, defaultValue time.Duration) time.Duration {
	raw := GetEnv(envVar, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue
	}
	return d
}
