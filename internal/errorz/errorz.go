package errorz

import "strings"

// FieldError describes a single failing input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError signals that provided input is invalid. It accumulates every
// failing field rather than stopping at the first, so callers can surface the
// whole picture in one response.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("validation failed")
	for _, f := range e.Fields {
		b.WriteString(": ")
		b.WriteString(f.Field)
		b.WriteString(" ")
		b.WriteString(f.Message)
	}
	return b.String()
}

// Add records a failing field.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Any reports whether any field failed.
func (e *ValidationError) Any() bool {
	return len(e.Fields) > 0
}

// ErrOrNil returns the error if any field failed, nil otherwise. Returning the
// concrete type directly would make the nil-check at the caller lie.
func (e *ValidationError) ErrOrNil() error {
	if e.Any() {
		return e
	}
	return nil
}
