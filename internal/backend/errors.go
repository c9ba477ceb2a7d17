package backend

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTransport marks failures to reach the backend at all.
	ErrTransport = errors.New("backend unreachable")
	// ErrUnauthorized matches 401/403 responses; callers send the user back to login.
	ErrUnauthorized = errors.New("backend rejected credentials")
	// ErrMissingToken is returned when login succeeds without a token in the body.
	ErrMissingToken = errors.New("login response has no token")
)

// APIError is a non-2xx response. Message comes from the body's error or
// message field when present.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && (e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden)
}

// UserMessage is the text shown to the user for a failed write.
func (e *APIError) UserMessage(fallback string) string {
	if e.Message != "" {
		return e.Message
	}
	return fallback
}

// SchemaError reports a response body that does not match the expected shape.
type SchemaError struct {
	Path   string
	Field  string
	Reason string
	Err    error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: malformed response: %s %s", e.Path, e.Field, e.Reason)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// MessageFor picks the single top-level message for a failed write.
func MessageFor(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage(fallback)
	}
	return fallback
}

// IsRejection reports whether the backend answered and refused the request
// itself, as opposed to failing to answer. Timeouts, throttling and 5xx
// responses are not rejections.
func IsRejection(err error) bool {
	if errors.Is(err, ErrUnauthorized) {
		return true
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Status {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return apiErr.Status >= 400 && apiErr.Status < 500
}
