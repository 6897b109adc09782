package goIdentity

import (
	"errors"
	"fmt"
)

var (
	// ErrClientNotReady is an exported constant or variable used by the identity client.
	ErrClientNotReady = errors.New("client not initialized")
	// ErrNoRefreshToken is an exported constant or variable used by the identity client.
	ErrNoRefreshToken = errors.New("no refresh token available")
	// ErrRefreshFailed is an exported constant or variable used by the identity client.
	ErrRefreshFailed = errors.New("token refresh failed")
	// ErrSessionTerminated is an exported constant or variable used by the identity client.
	ErrSessionTerminated = errors.New("session terminated")
	// ErrUnauthorized is an exported constant or variable used by the identity client.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidReturnURL is an exported constant or variable used by the identity client.
	ErrInvalidReturnURL = errors.New("invalid return url")
	// ErrInvalidToken is an exported constant or variable used by the identity client.
	ErrInvalidToken = errors.New("invalid token")
	// ErrRequestFailed is an exported constant or variable used by the identity client.
	ErrRequestFailed = errors.New("request failed")
)

// APIError is the single error surface callers see for a terminally failed
// HTTP request. Message is user-displayable: the server-supplied message when
// one was present, otherwise the fixed fallback for the status code. Status 0
// means the failure never produced an HTTP response (network error, retries
// exhausted).
type APIError struct {
	Status  int
	Message string
	Method  string
	URL     string
	Err     error
}

// Error describes the error operation and its observable behavior.
func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	if e.Status == 0 {
		return fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.Status, e.Message)
}

// Unwrap exposes the underlying cause so callers can branch with errors.Is
// (for example on [ErrSessionTerminated] after a failed refresh).
func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
