// Package apperror defines the application's error taxonomy.
//
// Services return these instead of HTTP status codes — the handler
// layer owns the mapping to HTTP (see handler/response.go). A gRPC or
// CLI front end could map the same sentinels differently.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

// AppError carries a sentinel plus a human-readable message, and for
// validation failures a field → message map (one message per field,
// first violation wins).
type AppError struct {
	Err     error             // sentinel identifying the category
	Message string            // human-readable error message
	Fields  map[string]string // optional: per-field validation detail
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// ValidationFailed wraps the field-error map produced by the validate
// package. The message is a generic summary; the detail lives in Fields.
func ValidationFailed(fields map[string]string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: "Validation failed",
		Fields:  fields,
	}
}

// Conflict reports a request the current state rejects: a duplicate
// email, a spent OTP, or bad sign-in credentials. Note the HTTP layer
// maps this to 422, not 409 — the API reuses the validation status for
// conflicts.
func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Unauthorized reports a missing, invalid, or expired token on a
// protected route. Keep messages coarse: "token expired" vs "invalid
// token" is the finest distinction we expose, never the underlying
// cause. Bad sign-in credentials are a Conflict, not Unauthorized.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}
