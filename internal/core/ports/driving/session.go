package driving

import (
	"context"

	"github.com/mindline-labs/mindline-cli/internal/core/domain"
)

// SessionController drives one companion chat session through its
// lifecycle. A controller owns exactly one session; once ended, a new
// session requires a new controller (or an explicit Reset).
type SessionController interface {
	// Start probes availability and opens a session seeded by a
	// completed analysis. Valid only while idle; a failed start returns
	// the controller to idle.
	Start(ctx context.Context) error

	// Send submits one user message and appends the assistant's reply.
	// Valid only while active. Attempts inside the send cooldown window
	// are dropped with domain.ErrRateLimited and make no network call.
	Send(ctx context.Context, text string) error

	// RequestEnd surfaces the end-confirmation prompt immediately.
	RequestEnd() error

	// ConfirmEnd closes the session on the server. Valid only while the
	// end-confirmation prompt is up; subject to its own cooldown.
	ConfirmEnd(ctx context.Context) error

	// DeclineEnd dismisses the end-confirmation prompt and resumes the
	// conversation. No network call.
	DeclineEnd() error

	// Reset returns an ended controller to idle with an empty
	// transcript, so a fresh session can be started from the same seed.
	Reset() error

	// Status returns the current lifecycle state.
	Status() domain.SessionStatus

	// Session returns a snapshot of the session, including the full
	// transcript. Safe to retain.
	Session() domain.ConversationSession
}
