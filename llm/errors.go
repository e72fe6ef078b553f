package llm

import (
	"errors"
	"net/http"
)

// Error represents a provider-neutral call failure.
type Error struct {
	Type        ErrorType
	Message     string
	Retryable   bool
	StatusCode  int   // HTTP status surfaced to API callers; 0 means 500
	ProviderErr error // Original provider-specific error
}

// ErrorType represents the category of error.
type ErrorType string

const (
	// ErrorTypeNetwork covers connection-level failures (refused, reset,
	// truncated bodies). Always retryable.
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeTimeout covers deadline and provider timeout errors.
	// Always retryable.
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeRequest covers provider 4xx responses (bad request, auth,
	// not found, conflict, permission, unprocessable entity). Never
	// retried; the provider's status code is surfaced verbatim.
	ErrorTypeRequest ErrorType = "request"
	// ErrorTypeProvider covers provider 5xx responses. Surfaced as 500.
	ErrorTypeProvider ErrorType = "provider"
	// ErrorTypeUnknown covers everything else. Surfaced as 500.
	ErrorTypeUnknown ErrorType = "unknown"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.ProviderErr != nil {
		return e.Message + ": " + e.ProviderErr.Error()
	}
	return e.Message
}

// Unwrap returns the underlying provider error.
func (e *Error) Unwrap() error {
	return e.ProviderErr
}

// HTTPStatus returns the status code to surface to API callers.
func (e *Error) HTTPStatus() int {
	if e.StatusCode > 0 {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

// IsRetryableError checks if an error is eligible for retry.
func IsRetryableError(err error) bool {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Retryable
	}
	return false
}

// HTTPStatus returns the status code a classified error maps to.
// Unclassified errors map to 500.
func HTTPStatus(err error) int {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// Classify returns err as an *Error, wrapping unclassified errors as
// ErrorTypeUnknown. Already-classified errors pass through unchanged so
// their status and message survive every layer.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr
	}
	return &Error{
		Type:        ErrorTypeUnknown,
		Message:     err.Error(),
		Retryable:   false,
		ProviderErr: err,
	}
}

// NewNetworkError creates a retryable connection-level error.
func NewNetworkError(message string, providerErr error) *Error {
	return &Error{
		Type:        ErrorTypeNetwork,
		Message:     message,
		Retryable:   true,
		ProviderErr: providerErr,
	}
}

// NewTimeoutError creates a retryable timeout error.
func NewTimeoutError(message string, providerErr error) *Error {
	return &Error{
		Type:        ErrorTypeTimeout,
		Message:     message,
		Retryable:   true,
		ProviderErr: providerErr,
	}
}

// NewRequestError creates a non-retryable 4xx error carrying the
// provider's status code and message.
func NewRequestError(message string, statusCode int, providerErr error) *Error {
	return &Error{
		Type:        ErrorTypeRequest,
		Message:     message,
		Retryable:   false,
		StatusCode:  statusCode,
		ProviderErr: providerErr,
	}
}

// NewProviderError creates a non-retryable provider-side (5xx) error.
// It always surfaces as HTTP 500 regardless of the provider's status.
func NewProviderError(message string, providerErr error) *Error {
	return &Error{
		Type:        ErrorTypeProvider,
		Message:     message,
		Retryable:   false,
		StatusCode:  http.StatusInternalServerError,
		ProviderErr: providerErr,
	}
}
