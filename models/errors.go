package models

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by id/username lookups that found nothing. It is a
// first-class result: callers branch on it with errors.Is and render an empty
// state instead of failing.
var ErrNotFound = errors.New("not found")

// ValidationError is returned when a write fails input validation. Field
// errors are keyed by field name, each with one or more messages.
type ValidationError struct {
	FieldErrors map[string][]string
}

func (e *ValidationError) Error() string {
	if msg := e.FirstFieldError(); msg != "" {
		return fmt.Sprintf("validation failed: %s", msg)
	}
	return "validation failed"
}

// FirstFieldError returns the first structured field message, or "" when the
// error carries none. This is the only extraction rule the UI applies.
func (e *ValidationError) FirstFieldError() string {
	for _, msgs := range e.FieldErrors {
		if len(msgs) > 0 {
			return msgs[0]
		}
	}
	return ""
}

// NewValidationError builds a single-field validation error.
func NewValidationError(field string, messages ...string) *ValidationError {
	return &ValidationError{FieldErrors: map[string][]string{field: messages}}
}

// TransportError wraps a network or query failure. It surfaces as a
// view-local "something went wrong" state, never a crash.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
