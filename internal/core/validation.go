package core

import (
	"errors"
	"fmt"
)

// ValidationError is a client-caused input problem. Message is shown to the caller as-is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// MissingFieldError reports a required field that is absent or empty.
func MissingFieldError(field string) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf("Missing required field: %s", field)}
}

// InvalidTypeError reports a type outside {income, expense}.
func InvalidTypeError() *ValidationError {
	return &ValidationError{Field: "type", Message: "Type must be either income or expense"}
}

// IsValidationError reports whether err is, or wraps, a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
