package audit

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Action identifies a security-relevant event category.
type Action string

const (
	ActionLogin           Action = "LOGIN"
	ActionLoginFailed     Action = "LOGIN_FAILED"
	ActionLogout          Action = "LOGOUT"
	ActionRegister        Action = "REGISTER"
	ActionRegisterFailed  Action = "REGISTER_FAILED"
	ActionPasswordChanged Action = "PASSWORD_CHANGED"

	// Reserved vocabulary for the storefront flows that share the audit_logs
	// table. The auth server never emits these itself.
	ActionPasswordResetRequest Action = "PASSWORD_RESET_REQUEST"
	ActionPasswordResetSuccess Action = "PASSWORD_RESET_SUCCESS"
	ActionPasswordResetFailed  Action = "PASSWORD_RESET_FAILED"
	ActionProfileUpdate        Action = "PROFILE_UPDATE"
	ActionProductView          Action = "PRODUCT_VIEW"
	ActionOrderCreated         Action = "ORDER_CREATED"
	ActionOrderUpdated         Action = "ORDER_UPDATED"
)

// Event is an append-only record of a security-relevant action.
type Event struct {
	Action      Action    `json:"action"`
	UserID      string    `json:"user_id,omitempty"`
	UserEmail   string    `json:"user_email,omitempty"`
	Description string    `json:"description"`
	IPAddress   string    `json:"ip_address"`
	UserAgent   string    `json:"user_agent"`
	Timestamp   time.Time `json:"timestamp"`
}

// Sink persists audit events.
type Sink interface {
	Write(event Event) error
}

// Logger records audit events best-effort. A sink failure is downgraded to a
// fallback log line and never propagates into the caller's request path:
// security observability must not become an availability dependency for the
// auth flow itself.
type Logger struct {
	sink     Sink
	fallback zerolog.Logger
	nowTime  func() time.Time
}

// LoggerOption defines a function type to modify the Logger instance.
type LoggerOption func(*Logger)

// WithFallback sets the logger used when the sink fails (injectable for tests).
func WithFallback(l zerolog.Logger) LoggerOption {
	return func(al *Logger) {
		al.fallback = l
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) LoggerOption {
	return func(al *Logger) {
		al.nowTime = nowFunc
	}
}

// NewLogger creates a Logger over the given sink. A nil sink is allowed; every
// event then goes straight to the fallback.
func NewLogger(sink Sink, options ...LoggerOption) *Logger {
	l := &Logger{
		sink:     sink,
		fallback: log.Logger,
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

// Log records an event. It never returns an error and never panics into the
// caller; the surrounding request completes independent of the audit outcome.
func (l *Logger) Log(action Action, userID, userEmail, description, ipAddress, userAgent string) {
	event := Event{
		Action:      action,
		UserID:      userID,
		UserEmail:   userEmail,
		Description: description,
		IPAddress:   ipAddress,
		UserAgent:   userAgent,
		Timestamp:   l.nowTime(),
	}

	if l.sink == nil {
		l.fallbackLine(event, nil)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			l.fallback.Error().Interface("panic", r).Str("action", string(event.Action)).
				Msg("audit sink panicked")
		}
	}()

	if err := l.sink.Write(event); err != nil {
		l.fallbackLine(event, err)
		return
	}

	l.fallback.Debug().
		Str("action", string(event.Action)).
		Str("user", eventSubject(event)).
		Msg("audit logged")
}

func (l *Logger) fallbackLine(event Event, cause error) {
	line := l.fallback.Warn().
		Str("action", string(event.Action)).
		Str("user", eventSubject(event)).
		Str("description", event.Description).
		Str("ip_address", event.IPAddress).
		Str("user_agent", event.UserAgent)
	if cause != nil {
		line = line.Err(cause)
	}
	line.Msg("AUDIT FALLBACK")
}

func eventSubject(event Event) string {
	if event.UserEmail != "" {
		return event.UserEmail
	}
	if event.UserID != "" {
		return event.UserID
	}
	return "unknown"
}
