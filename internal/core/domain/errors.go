package domain

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrTodoNotFound       = errors.New("todo not found")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrStorage            = errors.New("storage error")
	ErrUnauthorized       = errors.New("unauthorized")
)

// ValidationError carries a client-safe message for a rejected field.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// IsStorageFailure reports whether err came from the backing store rather
// than from input or lookup.
func IsStorageFailure(err error) bool {
	return errors.Is(err, ErrStorageUnavailable) || errors.Is(err, ErrStorage)
}
