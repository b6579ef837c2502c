// Package apperror provides domain-specific error types for Almanac.
// Each error carries an HTTP status code, a machine-readable type and a
// message safe to show to the client. The Echo error handler maps them to
// JSON responses; the CLI prints the message.
//
// NEVER return raw database or infrastructure errors to the client. Wrap them
// with NewInternal instead.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine-readable error types. Callers match on these through Is.
const (
	TypeNotFound            = "not_found"
	TypeBadRequest          = "bad_request"
	TypeConflict            = "conflict"
	TypeValidation          = "validation_error"
	TypeInternal            = "internal_error"
	TypeInvalidDate         = "invalid_date"
	TypeUnsupportedCalendar = "unsupported_calendar"
	TypeTimezone            = "timezone_error"
)

// AppError is the base error type for all domain errors.
type AppError struct {
	// Code is the HTTP status code (e.g., 404, 422, 500).
	Code int `json:"-"`

	// Type is a machine-readable error classifier (e.g., "invalid_date").
	Type string `json:"type"`

	// Message is a human-readable description safe for the client.
	Message string `json:"message"`

	// Internal holds the underlying error for logging. Never exposed to client.
	Internal error `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *AppError) Unwrap() error {
	return e.Internal
}

// --- Constructors for common error types ---

// NewNotFound creates a 404 Not Found error.
func NewNotFound(message string) *AppError {
	return &AppError{Code: http.StatusNotFound, Type: TypeNotFound, Message: message}
}

// NewBadRequest creates a 400 Bad Request error.
func NewBadRequest(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Type: TypeBadRequest, Message: message}
}

// NewConflict creates a 409 Conflict error.
func NewConflict(message string) *AppError {
	return &AppError{Code: http.StatusConflict, Type: TypeConflict, Message: message}
}

// NewValidation creates a 422 Unprocessable Entity error for validation failures.
func NewValidation(message string) *AppError {
	return &AppError{Code: http.StatusUnprocessableEntity, Type: TypeValidation, Message: message}
}

// NewInternal creates a 500 Internal Server Error. The real error is stored
// in Internal for logging but the client only sees a generic message.
func NewInternal(err error) *AppError {
	return &AppError{
		Code:     http.StatusInternalServerError,
		Type:     TypeInternal,
		Message:  "An unexpected error occurred. Please try again.",
		Internal: err,
	}
}

// --- Calendar errors ---

// NewInvalidDate reports a year/month/day/hour/minute tuple that is outside
// the valid range of the target calendar system. Always a caller or input
// error; never retried.
func NewInvalidDate(message string) *AppError {
	return &AppError{Code: http.StatusUnprocessableEntity, Type: TypeInvalidDate, Message: message}
}

// NewInvalidDatef is NewInvalidDate with fmt.Sprintf formatting.
func NewInvalidDatef(format string, args ...any) *AppError {
	return NewInvalidDate(fmt.Sprintf(format, args...))
}

// NewUnsupportedCalendar reports a calendar identifier that the registry
// cannot resolve.
func NewUnsupportedCalendar(id string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Type:    TypeUnsupportedCalendar,
		Message: fmt.Sprintf("unsupported calendar type %q", id),
	}
}

// NewTimezone reports a timezone that could not be resolved. cause may be nil.
func NewTimezone(message string, cause error) *AppError {
	return &AppError{
		Code:     http.StatusBadRequest,
		Type:     TypeTimezone,
		Message:  message,
		Internal: cause,
	}
}

// Is reports whether err is (or wraps) an AppError of the given type.
func Is(err error, errType string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// SafeMessage returns the client-safe error message from an error. For any
// error that is not an AppError a generic message is returned so internal
// details like table names never leak.
func SafeMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "an unexpected error occurred"
}

// SafeCode returns the HTTP status code from an AppError, or 500 for
// any other error type.
func SafeCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}
