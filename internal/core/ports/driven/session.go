package driven

import (
	"context"

	"github.com/mindline-labs/mindline-cli/internal/core/domain"
)

// StartResult is the backend's response to opening a session.
type StartResult struct {
	// SessionID is the opaque server-assigned session identifier.
	SessionID string

	// Response is the assistant's opening message.
	Response string
}

// ContinueResult is the backend's response to one conversation turn.
type ContinueResult struct {
	// Response is the assistant's reply.
	Response string

	// ShouldContinue is false when the server suggests winding the
	// session down.
	ShouldContinue bool
}

// SessionService is the companion chat backend. All session state lives
// on the server; the opaque session ID is the only correlation between
// calls.
type SessionService interface {
	// Availability probes whether the companion service can accept a
	// new session.
	Availability(ctx context.Context) (bool, error)

	// Start opens a session seeded by a completed analysis.
	Start(ctx context.Context, seed domain.AnalysisAggregate) (StartResult, error)

	// Continue sends one user message and returns the assistant's reply.
	Continue(ctx context.Context, sessionID, message string) (ContinueResult, error)

	// End closes the session on the server.
	End(ctx context.Context, sessionID string) error
}
