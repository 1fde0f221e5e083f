package parktrack

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound matches an *APIError with status 404 via errors.Is.
	ErrNotFound = errors.New("parktrack: not found")

	// ErrUnauthorized matches an *APIError with status 401 or 403 via errors.Is.
	ErrUnauthorized = errors.New("parktrack: unauthorized")

	// ErrMalformedResponse is returned when a 2xx body cannot be decoded.
	ErrMalformedResponse = errors.New("parktrack: malformed response")

	// ErrRequestFailed wraps transport-level failures (DNS, refused, timeout).
	ErrRequestFailed = errors.New("parktrack: request failed")
)

// APIError is a non-2xx response from the ParkTrack API.
type APIError struct {
	Status  int
	Message string
	Method  string
	Path    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("parktrack: %s %s: %s", e.Method, e.Path, e.Message)
}

// Is lets errors.Is match status-class sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	}
	return false
}

// Message returns the user-facing part of err: the server message for an
// *APIError, err.Error() otherwise.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
