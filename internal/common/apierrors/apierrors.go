// Package apierrors provides standardized error handling for the scoring API.
package apierrors

import (
	"fmt"
	"net/http"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeAuthFailed    ErrorCode = "AUTH_FAILED"
	ErrCodeUnknownMethod ErrorCode = "UNKNOWN_METHOD"

	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
	ErrCodeStoreDegraded    ErrorCode = "STORE_DEGRADED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewAuthFailedError creates a non-retryable authentication error. The
// expected digest never goes into Details; the message stays opaque.
func NewAuthFailedError() *StandardError {
	return &StandardError{
		Code:      ErrCodeAuthFailed,
		Message:   "Forbidden",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownMethodError creates a non-retryable unknown-method error.
func NewUnknownMethodError(method string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownMethod,
		Message:   "Unknown method",
		Details:   fmt.Sprintf("method: %s", method),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreUnavailableError creates a retryable store connectivity error.
func NewStoreUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreUnavailable,
		Message:   "Store connection could not be established",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreDegradedError creates a retryable error for a write that exhausted
// its retry budget without the store raising.
func NewStoreDegradedError(op, key string) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreDegraded,
		Message:   "Store operation exhausted retries",
		Details:   fmt.Sprintf("op: %s, key: %s", op, key),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError creates a non-retryable wrapper for unexpected failures.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Internal server error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// HTTP status codes used by the dispatch surface. 422 carries the per-field
// error map; everything else carries an opaque status text.
const (
	StatusOK             = http.StatusOK
	StatusBadRequest     = http.StatusBadRequest
	StatusForbidden      = http.StatusForbidden
	StatusNotFound       = http.StatusNotFound
	StatusInvalidRequest = http.StatusUnprocessableEntity
	StatusInternalError  = http.StatusInternalServerError
)

var statusText = map[int]string{
	StatusBadRequest:     "Bad Request",
	StatusForbidden:      "Forbidden",
	StatusNotFound:       "Not Found",
	StatusInvalidRequest: "Invalid Request",
	StatusInternalError:  "Internal Server Error",
}

// StatusText returns the canonical error string for a failure code.
func StatusText(code int) string {
	if text, ok := statusText[code]; ok {
		return text
	}
	return "Unknown Error"
}

// IsErrorStatus reports whether a status code maps to the error envelope
// rather than the response envelope.
func IsErrorStatus(code int) bool {
	_, ok := statusText[code]
	return ok
}
