package courier

import (
	"errors"
	"fmt"
)

// ErrNotRegistered indicates the requested courier is not in the registry.
var ErrNotRegistered = errors.New("courier not registered")

// UnsupportedCapabilityError indicates a courier lacks the capability an
// operation requires.
type UnsupportedCapabilityError struct {
	Courier   string
	Operation string
}

// Error implements the error interface.
func (e *UnsupportedCapabilityError) Error() string {
	return fmt.Sprintf("courier %q does not support %s", e.Courier, e.Operation)
}

// ConfigError indicates a driver's required setup is incomplete. Drivers
// raise it at construction and never silently default credentials.
type ConfigError struct {
	Courier string
	Reason  string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s configuration is incomplete: %s", e.Courier, e.Reason)
}

// APIError wraps a non-success response from a courier's upstream API. It
// carries the status code and raw response body for diagnostics and is
// propagated to callers unchanged.
type APIError struct {
	Courier    string
	StatusCode int
	Message    string
	Body       map[string]any
	Cause      error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s API error (%d): %s: %v", e.Courier, e.StatusCode, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s API error (%d): %s", e.Courier, e.StatusCode, e.Message)
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error {
	return e.Cause
}

// NewAPIError creates a new APIError.
func NewAPIError(courier string, statusCode int, message string) *APIError {
	return &APIError{
		Courier:    courier,
		StatusCode: statusCode,
		Message:    message,
	}
}

// WithBody attaches the raw response body.
func (e *APIError) WithBody(body map[string]any) *APIError {
	e.Body = body
	return e
}

// WithCause attaches an underlying cause.
func (e *APIError) WithCause(err error) *APIError {
	e.Cause = err
	return e
}
