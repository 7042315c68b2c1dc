// Package common holds the error type returned to HTTP clients.
package common

import (
	"fmt"
	"net/http"
)

// APIError is an error with the HTTP status and body it maps to. Cause is
// logged but never serialized.
type APIError struct {
	Status  int            `json:"-"`
	Message string         `json:"error"`
	Fields  map[string]any `json:"fields,omitempty"`
	Cause   error          `json:"-"`
}

// ErrRequestTimeout is returned when the request context ends before the
// work is done.
var ErrRequestTimeout = APIError{Status: http.StatusRequestTimeout, Message: "request canceled or timed out"}

func (e APIError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e APIError) Unwrap() error { return e.Cause }

func Errf(status int, format string, args ...any) APIError {
	return APIError{Status: status, Message: fmt.Sprintf(format, args...)}
}

// NewAPIError creates an APIError with status, message, and optional fields
func NewAPIError(status int, message string, fields map[string]any) APIError {
	return APIError{
		Status:  status,
		Message: message,
		Fields:  fields,
	}
}

// Wrap hides cause behind a client-facing message.
func Wrap(status int, cause error, message string) APIError {
	return APIError{Status: status, Message: message, Cause: cause}
}
