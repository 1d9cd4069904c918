package xfeed

import (
	"errors"
	"fmt"
)

// Sentinel errors. Callers match with errors.Is; the UI layer decides what to
// surface for each kind (auth prompt, credential re-check, stale query ID
// diagnostic).
var (
	// ErrNotAuthenticated means no credentials are present; no request was made.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrAuthRejected means upstream rejected the tokens (HTTP 401/403).
	ErrAuthRejected = errors.New("authentication rejected")

	// ErrEndpointGone means upstream returned 404 — the GraphQL query ID has
	// likely rotated and the endpoint registry needs updating.
	ErrEndpointGone = errors.New("endpoint not found (stale query ID)")

	// ErrTransport means the request failed before an HTTP status was
	// obtained, or the response body was not valid JSON.
	ErrTransport = errors.New("transport failure")

	// ErrMissingUserID means the likes endpoint was invoked without a resolved
	// user id.
	ErrMissingUserID = errors.New("no user id resolved from credentials")

	// ErrDetailParse means a tweet-detail response contained no identifiable
	// focal tweet.
	ErrDetailParse = errors.New("no focal tweet in detail response")
)

// HTTPError is a non-2xx upstream response. It unwraps to ErrAuthRejected or
// ErrEndpointGone when the status warrants, so errors.Is keeps working.
type HTTPError struct {
	Operation string
	Status    int
	Snippet   string

	kind error
}

func (e *HTTPError) Error() string {
	if e.kind != nil {
		return fmt.Sprintf("%s: %v (HTTP %d): %s", e.Operation, e.kind, e.Status, e.Snippet)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Operation, e.Status, e.Snippet)
}

func (e *HTTPError) Unwrap() error { return e.kind }

// newHTTPError classifies a non-2xx status into the error taxonomy.
func newHTTPError(operation string, status int, body []byte) *HTTPError {
	e := &HTTPError{
		Operation: operation,
		Status:    status,
		Snippet:   truncateBytes(body, 200),
	}
	switch status {
	case 401, 403:
		e.kind = ErrAuthRejected
	case 404:
		e.kind = ErrEndpointGone
	}
	return e
}

func truncateBytes(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
