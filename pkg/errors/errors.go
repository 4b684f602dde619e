package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is an error that knows how it should be rendered to API consumers.
type AppError struct {
	Message    string `json:"Message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error returns the client-facing message, followed by the internal cause when one is attached.
func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}

	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}

	return e.Message
}

// Unwrap exposes the internal error for errors.Is / errors.As compatibility.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// WithInternal returns a copy of the AppError with an attached internal error.
func (e *AppError) WithInternal(err error) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Internal = err
	return &cpy
}

// Status returns the HTTP status for the error, defaulting to 500.
func (e *AppError) Status() int {
	if e == nil || e.StatusCode == 0 {
		return http.StatusInternalServerError
	}
	return e.StatusCode
}

// Common errors exposed to the rest of the application.
var (
	ErrBadRequest = &AppError{
		Message:    "Invalid request",
		StatusCode: http.StatusBadRequest,
	}

	ErrNotFound = &AppError{
		Message:    "Resource not found",
		StatusCode: http.StatusNotFound,
	}

	ErrTooManyRequests = &AppError{
		Message:    "Rate limit exceeded, retry later",
		StatusCode: http.StatusTooManyRequests,
	}

	ErrInternalServer = &AppError{
		Message:    "Internal server error",
		StatusCode: http.StatusInternalServerError,
	}
)

// New builds a new application error with the provided message and status.
func New(message string, statusCode int) *AppError {
	return &AppError{
		Message:    message,
		StatusCode: statusCode,
	}
}

// FromError converts a generic error into an AppError. Unknown errors become
// ErrInternalServer carrying the original error, so the rendered message embeds its text.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return NewInternal(err)
}

// NewBadRequest wraps validation errors with a helpful message.
func NewBadRequest(message string) *AppError {
	return &AppError{
		Message:    message,
		StatusCode: ErrBadRequest.StatusCode,
	}
}

// NewInternal wraps an unexpected failure as a 500 response.
func NewInternal(err error) *AppError {
	return ErrInternalServer.WithInternal(err)
}
