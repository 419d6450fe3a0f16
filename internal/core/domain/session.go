package domain

import "time"

// SessionStatus is the state of a conversation session's lifecycle.
// Illegal operations for a state are rejected with ErrSessionState,
// so a send can never overlap another send or a start.
type SessionStatus string

// Session states. Idle is initial; Ended is terminal.
const (
	// SessionIdle means no session exists yet (or a start failed).
	SessionIdle SessionStatus = "idle"

	// SessionStarting means the start call is in flight.
	SessionStarting SessionStatus = "starting"

	// SessionActive means the session is open and can accept a message.
	SessionActive SessionStatus = "active"

	// SessionSending means a send call is in flight. No further send is
	// accepted until the current exchange resolves.
	SessionSending SessionStatus = "sending"

	// SessionEndingConfirmation means an end-confirmation prompt is
	// surfaced; the user may confirm or decline.
	SessionEndingConfirmation SessionStatus = "ending_confirmation"

	// SessionEnded means the session is closed on the server. Terminal.
	SessionEnded SessionStatus = "ended"
)

// Message senders.
const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// Message is a single conversation turn. Immutable once created.
type Message struct {
	// ID uniquely identifies the message.
	ID string

	// Sender is SenderUser or SenderAssistant.
	Sender string

	// Content is the message text.
	Content string

	// SentAt is when the message was appended to the transcript.
	SentAt time.Time
}

// ConversationSession is a server-tracked companion chat session seeded
// by a prior analysis result. Messages are strictly append-ordered;
// entries are never reordered or deleted.
type ConversationSession struct {
	// ID is the server-assigned opaque session identifier.
	ID string

	// Status is the current lifecycle state.
	Status SessionStatus

	// SeedRequestID references the analysis request whose result seeded
	// this session.
	SeedRequestID string

	// Messages is the ordered transcript.
	Messages []Message

	// WindDown is true once the server has suggested ending the session,
	// until the user declines or the session ends.
	WindDown bool

	// LastActivityAt is when the session last changed.
	LastActivityAt time.Time
}

// Clone returns a snapshot copy safe to publish to subscribers.
func (s ConversationSession) Clone() ConversationSession {
	out := s
	out.Messages = make([]Message, len(s.Messages))
	copy(out.Messages, s.Messages)
	return out
}
