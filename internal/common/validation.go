package common

import (
	"errors"
	"fmt"
)

// ValidationError reports a rejected input value, attributable to a single
// field. It is returned before any store call is made.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

// NewValidationError constructs a field-level validation error.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Msg: msg}
}

// AsValidation reports whether err is (or wraps) a *ValidationError and,
// if so, returns it.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
