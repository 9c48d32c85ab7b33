// Package apperr defines the error taxonomy shared by services and handlers.
// Services wrap these values with context; the HTTP error handler maps them
// to status codes with StatusCode.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthorized       = errors.New("authentication required")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
)

// ValidationError reports a missing or malformed field, or an unrecognized
// enumeration value.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validation returns a *ValidationError with a formatted message.
func Validation(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFound returns an error reading "<entity> not found" that matches ErrNotFound.
func NotFound(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}

// Conflict returns an error carrying msg that matches ErrConflict.
func Conflict(msg string) error {
	return &conflictError{msg: msg}
}

type conflictError struct{ msg string }

func (e *conflictError) Error() string { return e.msg }
func (e *conflictError) Unwrap() error { return ErrConflict }

// IsValidation reports whether err is, or wraps, a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StatusCode maps err onto an HTTP status. Unknown errors are 500.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
