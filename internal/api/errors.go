package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard errors returned by the client.
var (
	// ErrValidation indicates the server rejected the request payload.
	ErrValidation = errors.New("validation error")
	// ErrAuthentication indicates missing or expired credentials.
	ErrAuthentication = errors.New("authentication failed")
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrThrottled indicates the request was rate limited after retries.
	ErrThrottled = errors.New("request throttled")
	// ErrServer indicates a server-side failure.
	ErrServer = errors.New("server error")
)

// APIError represents an error response from the AssetVault API.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Message is the server-provided error message, if any.
	Message string
	// Err is the underlying error class.
	Err error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (status %d)", e.Err.Error(), e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *APIError) Unwrap() error {
	return e.Err
}

// ValidationError represents a client-side input validation failure.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap returns ErrValidation for errors.Is support.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// newAPIError maps an HTTP status to the error taxonomy.
func newAPIError(statusCode int, message string) *APIError {
	err := &APIError{StatusCode: statusCode, Message: message}
	switch {
	case statusCode == http.StatusBadRequest:
		err.Err = ErrValidation
	case statusCode == http.StatusUnauthorized, statusCode == http.StatusForbidden:
		err.Err = ErrAuthentication
	case statusCode == http.StatusNotFound:
		err.Err = ErrNotFound
	case statusCode == http.StatusTooManyRequests:
		err.Err = ErrThrottled
	case statusCode >= 500:
		err.Err = ErrServer
	}
	return err
}
