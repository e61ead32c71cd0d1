package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized matches any *Error with a 401 status.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrEmptySession is returned when a login succeeds without a session id.
	ErrEmptySession = errors.New("login response carried no session id")
)

// Error is a non-2xx response from the vehicle-control service.
type Error struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.RequestID != "" {
		return fmt.Sprintf("API error %d: %s (request %s)", e.StatusCode, msg, e.RequestID)
	}
	return fmt.Sprintf("API error %d: %s", e.StatusCode, msg)
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// IsUnauthorized reports whether err is, or wraps, a 401 response.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// StatusCode extracts the HTTP status from err, or 0 when err is not an *Error.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
