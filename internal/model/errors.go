package model

import "errors"

// ErrNotFound is returned when an artifact id does not exist.
var ErrNotFound = errors.New("artifact not found")

// ValidationError reports malformed, oversized, or missing input. It is
// raised synchronously, before any session is opened or framing begins.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Validation builds a ValidationError with the given user-facing message.
func Validation(msg string) *ValidationError {
	return &ValidationError{Msg: msg}
}
