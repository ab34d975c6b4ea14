package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes surfaced to API callers
const (
	CodeUnauthenticated  = "UNAUTHENTICATED"
	CodeForbidden        = "FORBIDDEN"
	CodeValidation       = "VALIDATION_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeInternal         = "INTERNAL_ERROR"
	CodeNotImplemented   = "NOT_IMPLEMENTED"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError carrying the same code, so callers can test
// errors.Is(err, ErrStoreUnavailable) regardless of message.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewAppError creates a new AppError
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// Unauthenticated creates a 401 error
func Unauthenticated(message string, err error) *AppError {
	return NewAppError(CodeUnauthenticated, message, http.StatusUnauthorized, err)
}

// Forbidden creates a 403 error
func Forbidden(message string, err error) *AppError {
	return NewAppError(CodeForbidden, message, http.StatusForbidden, err)
}

// Validation creates a 400 error for malformed input
func Validation(message string, err error) *AppError {
	return NewAppError(CodeValidation, message, http.StatusBadRequest, err)
}

// NotFound creates a 404 error
func NotFound(message string, err error) *AppError {
	return NewAppError(CodeNotFound, message, http.StatusNotFound, err)
}

// Conflict creates a 409 error
func Conflict(message string, err error) *AppError {
	return NewAppError(CodeConflict, message, http.StatusConflict, err)
}

// StoreUnavailable creates a 500 error for key-value store failures
func StoreUnavailable(message string, err error) *AppError {
	return NewAppError(CodeStoreUnavailable, message, http.StatusInternalServerError, err)
}

// Internal creates a 500 error
func Internal(message string, err error) *AppError {
	return NewAppError(CodeInternal, message, http.StatusInternalServerError, err)
}

// NotImplemented creates a 501 error
func NotImplemented(message string, err error) *AppError {
	return NewAppError(CodeNotImplemented, message, http.StatusNotImplemented, err)
}

// Sentinels for errors.Is checks

var (
	ErrUnauthenticated  = Unauthenticated("Unauthorized", nil)
	ErrForbidden        = Forbidden("Forbidden", nil)
	ErrValidation       = Validation("Invalid request", nil)
	ErrNotFound         = NotFound("Not found", nil)
	ErrConflict         = Conflict("Conflict", nil)
	ErrStoreUnavailable = StoreUnavailable("Store unavailable", nil)

	ErrProfileNotFound = NotFound("Profile not found", nil)
)

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError attempts to convert an error to AppError
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
