package elnk

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors
var (
	// ErrMissingAPIKey indicates the client was configured without an API key
	ErrMissingAPIKey = errors.New("API key is required")
	// ErrInvalidArgument indicates a required argument was missing or malformed.
	// Calls failing with it never reach the network.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound indicates a lookup matched nothing
	ErrNotFound = errors.New("link not found")
)

// noResponseMessage is the envelope message for requests that got no answer.
const noResponseMessage = "No response received from API server"

// APIError represents a non-2xx response from the elnk API
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("elnk API error: status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound checks if the error indicates a not found response
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsServerError checks if the API failed on its side
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

// TransportError is returned when a request was sent but no response came back,
// e.g. on timeouts or connection resets.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("no response received from API server (%s %s): %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func invalidArgument(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, msg)
}

// StatusCode extracts the HTTP status code carried by err, or 0 when the
// failure never produced a response.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsRetryable reports whether repeating the call that produced err could succeed.
// Server errors and failures without a status code are retryable; client errors
// and invalid arguments are not.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, ErrInvalidArgument) || errors.Is(err, ErrMissingAPIKey) {
		return false
	}
	code := StatusCode(err)
	return code == 0 || code >= http.StatusInternalServerError
}

// ErrorMessage renders err the way the result envelope reports it.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return noResponseMessage
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return "Unknown error occurred"
}
