// Package apperr defines the error taxonomy shared by services and the
// HTTP boundary. Callers should use errors.Is against the Kind sentinels.
package apperr

import (
	"errors"
	"fmt"
)

// Kind sentinels. Every service-level failure wraps exactly one of these.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrInternal     = errors.New("internal error")
)

// Error carries a taxonomy kind plus a stable, client-safe message.
// The underlying cause (if any) stays server-side for logging.
type Error struct {
	kind    error
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Is(target error) bool { return target == e.kind }

func (e *Error) Unwrap() error { return e.cause }

// Unauthorized builds an authentication/authorization failure.
func Unauthorized(message string) *Error {
	return &Error{kind: ErrUnauthorized, Message: message}
}

// Validation builds a rejected-input failure (including uniqueness violations).
func Validation(message string) *Error {
	return &Error{kind: ErrValidation, Message: message}
}

// NotFound builds an entity-absent failure.
func NotFound(message string) *Error {
	return &Error{kind: ErrNotFound, Message: message}
}

// Internal wraps an unexpected failure. The cause is preserved for logs
// but the message is what clients may see.
func Internal(message string, cause error) *Error {
	return &Error{kind: ErrInternal, Message: message, cause: cause}
}

// Message returns the client-safe message for err, or fallback when err
// is not a taxonomy error.
func Message(err error, fallback string) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return fallback
}
