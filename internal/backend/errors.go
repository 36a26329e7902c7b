package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized means the bearer token was missing or rejected. Callers
	// must treat the session as invalid; the proxy maps this to HTTP 401.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrBackendUnavailable means the server of record is unconfigured or
	// unreachable. The proxy maps this to HTTP 503.
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// RequestError is any other non-success response, carrying the upstream
// status and the server's message when one was present.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("backend request failed (status %d): %s", e.Status, e.Message)
}
