package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidInput indicates malformed or invalid input.
	// Normalisation rejects a submission before any source is called.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNetworkFailure indicates a connection to a backend service failed.
	ErrNetworkFailure = errors.New("network failure")

	// ErrTimeout indicates a backend call exceeded its per-call deadline.
	ErrTimeout = errors.New("timeout")

	// ErrServiceUnavailable indicates the backend reported it cannot serve
	// requests (availability probe negative, or a 503 response).
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrSessionNotFound indicates the server no longer recognises the
	// session ID. The local session is stale.
	ErrSessionNotFound = errors.New("session not found")

	// ErrRateLimited indicates an action was dropped inside its cooldown
	// window. No network call was made.
	ErrRateLimited = errors.New("rate limited")

	// ErrSessionState indicates an operation is not valid in the session's
	// current state (e.g. sending before the session is active).
	ErrSessionState = errors.New("invalid session state")

	// ErrNoSession indicates no session exists to operate on.
	ErrNoSession = errors.New("no active session")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrHistoryDisabled indicates the analysis history store is not
	// configured. History commands are disabled.
	ErrHistoryDisabled = errors.New("history disabled")
)

// SourceError wraps an error from a single analysis source with the
// source's name, so callers can report which backend failed.
type SourceError struct {
	Source string
	Err    error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	return e.Source + ": " + e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/As checks.
func (e *SourceError) Unwrap() error {
	return e.Err
}
