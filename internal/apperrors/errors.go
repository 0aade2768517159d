// Package apperrors defines the typed errors surfaced by the HTTP API.
// Every client-visible failure carries a numeric error code and the HTTP
// status it maps to; the wrapped internal cause is logged, never returned.
package apperrors

import (
	"fmt"
	"net/http"
)

// Error codes returned in the "error_code" field of the error envelope.
const (
	CodeDataError     = 2000
	CodeMissingKey    = 2001
	CodeInternalError = 2002
	CodeUnknownError  = 2003
)

// AppError represents a structured application error.
type AppError struct {
	Code       int
	Message    string
	StatusCode int
	Internal   error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}
	return e.Message
}

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap returns a copy of sentinel carrying internal as its cause.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage returns a copy of sentinel with a client-facing message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

var (
	ErrValidation = &AppError{Code: CodeDataError, Message: "Invalid request data", StatusCode: http.StatusBadRequest}
	ErrMissingKey = &AppError{Code: CodeMissingKey, Message: "Missing request key", StatusCode: http.StatusBadRequest}
	ErrInternal   = &AppError{Code: CodeInternalError, Message: "Internal server error", StatusCode: http.StatusInternalServerError}
	ErrUnknown    = &AppError{Code: CodeUnknownError, Message: "Unknown Internal server error", StatusCode: http.StatusInternalServerError}
	ErrRateLimit  = &AppError{Code: CodeDataError, Message: "rate limit exceeded", StatusCode: http.StatusTooManyRequests}
)

// Validation is shorthand for a 2000 error with the given message.
func Validation(message string) *AppError {
	return WithMessage(ErrValidation, message)
}
