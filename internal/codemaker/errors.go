package codemaker

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned when the service rejects the API key.
var ErrUnauthorized = errors.New("unauthorized")

// ErrEmptyResponse is returned when a successful response carries no body
// where one is expected.
var ErrEmptyResponse = errors.New("empty response body")

// UnauthorizedHint is shown to users next to ErrUnauthorized failures.
const UnauthorizedHint = "check the API key (run 'codemaker init' or set CODEMAKER_API_KEY)"

// APIError is a non-success response other than an authorization failure.
type APIError struct {
	Operation  string
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Operation, e.StatusCode, e.Message)
}

// IsUnauthorized reports whether err is an authorization failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
