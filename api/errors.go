package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ── Errors ──────────────────────────────────────────────────

var (
	// ErrAuth marks requests the backend rejected for a bad or missing token.
	ErrAuth = errors.New("authentication rejected")

	// ErrNotFound marks requests against a table or row that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrBackendUnavailable marks transport failures and gateway errors.
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// Error carries the HTTP status and a response excerpt of a failed
// call. It unwraps to one of the sentinels above when the status maps
// to a known kind, so callers can test with errors.Is.
type Error struct {
	Status int
	Body   string

	kind error
}

func newStatusError(status int, body string) *Error {
	e := &Error{Status: status, Body: body}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.kind = ErrAuth
	case status == http.StatusNotFound:
		e.kind = ErrNotFound
	case status >= http.StatusBadGateway && status <= http.StatusGatewayTimeout:
		e.kind = ErrBackendUnavailable
	}
	return e
}

func (e *Error) Error() string {
	if e.kind != nil {
		return fmt.Sprintf("%v: http %d: %s", e.kind, e.Status, e.Body)
	}
	return fmt.Sprintf("http %d: %s", e.Status, e.Body)
}

func (e *Error) Unwrap() error { return e.kind }
