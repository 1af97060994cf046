package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain-specific errors
var (
	// ErrURLNotFound is returned when a short identifier has no matching record
	ErrURLNotFound = errors.New("URL not found")

	// ErrInvalidURL is returned when the provided long URL is invalid
	ErrInvalidURL = errors.New("invalid URL format")

	// ErrInvalidShortURL is returned when a short identifier is malformed
	ErrInvalidShortURL = errors.New("invalid short URL identifier")

	// ErrShortURLCollision is returned when a freshly derived identifier already belongs to another long URL
	ErrShortURLCollision = errors.New("short URL identifier collision")

	// ErrLongURLExists is returned by a store when a concurrent request created the record first
	ErrLongURLExists = errors.New("long URL already recorded")

	// ErrStore is wrapped by every durable store failure
	ErrStore = errors.New("store error")

	// ErrCacheUnavailable is wrapped by every cache transport failure
	ErrCacheUnavailable = errors.New("cache temporarily unavailable")
)

// AppError wraps errors with the context the HTTP layer needs
type AppError struct {
	Err        error  // Original error
	Message    string // User-friendly message
	StatusCode int    // HTTP status code
	Internal   bool   // Whether to log as internal error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

// Unwrap returns the wrapped error for errors.Is and errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a 404 error
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Err:        ErrURLNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: http.StatusNotFound,
	}
}

// NewValidationError creates a 400 validation error
func NewValidationError(err error, message string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// NewInternalError creates a 500 error for a durable store failure
func NewInternalError(err error) *AppError {
	if !errors.Is(err, ErrStore) {
		err = fmt.Errorf("%w: %w", ErrStore, err)
	}
	return &AppError{
		Err:        err,
		Message:    "Internal server error occurred",
		StatusCode: http.StatusInternalServerError,
		Internal:   true,
	}
}

// NewCacheError wraps a cache transport failure. Callers log it and carry on.
func NewCacheError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrCacheUnavailable, err)
}
