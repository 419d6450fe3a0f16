package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mindline-labs/mindline-cli/internal/core/domain"
	"github.com/mindline-labs/mindline-cli/internal/core/ports/driven"
	"github.com/mindline-labs/mindline-cli/internal/core/ports/driving"
	"github.com/mindline-labs/mindline-cli/internal/logger"
)

// Ensure SessionClient implements the interface.
var _ driving.SessionController = (*SessionClient)(nil)

// DefaultEndPromptDelay is how long after a shouldContinue=false reply
// the end-confirmation prompt is surfaced. The pause lets the user read
// the assistant's closing message before being asked to leave.
const DefaultEndPromptDelay = 2 * time.Second

// SessionClientConfig configures a SessionClient.
type SessionClientConfig struct {
	// Service is the companion chat backend (required).
	Service driven.SessionService

	// Seed is the completed analysis aggregate used to open the session.
	Seed domain.AnalysisAggregate

	// SendCooldown and EndCooldown override the per-action cooldowns
	// (default: DefaultCooldown each).
	SendCooldown time.Duration
	EndCooldown  time.Duration

	// EndPromptDelay overrides the shouldContinue=false prompt delay
	// (default: DefaultEndPromptDelay).
	EndPromptDelay time.Duration

	// Now overrides the clock (default: time.Now). Tests use this to
	// drive the cooldown windows deterministically.
	Now func() time.Time

	// OnChange, if set, receives a session snapshot after every state
	// change. It is called outside the client's lock.
	OnChange func(domain.ConversationSession)
}

// SessionClient owns one companion chat session and its state machine:
//
//	Idle → Starting → Active ⇄ Sending → EndingConfirmation → Ended
//
// Every operation checks the current state first, so a send can never
// overlap another send and an end can never race a start. All mutation
// happens under the client's lock; network calls happen outside it, with
// the Starting/Sending states standing in for the in-flight operation.
type SessionClient struct {
	service driven.SessionService
	seed    domain.AnalysisAggregate

	sendLimiter *ActionLimiter
	endLimiter  *ActionLimiter

	endPromptDelay time.Duration
	now            func() time.Time
	onChange       func(domain.ConversationSession)

	mu      sync.Mutex
	session domain.ConversationSession

	// epoch invalidates scheduled end-prompt timers: a timer fires only
	// if no other transition happened since it was scheduled.
	epoch int
}

// NewSessionClient creates an idle session client.
func NewSessionClient(cfg SessionClientConfig) (*SessionClient, error) {
	if cfg.Service == nil {
		return nil, fmt.Errorf("session client: service is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.EndPromptDelay == 0 {
		cfg.EndPromptDelay = DefaultEndPromptDelay
	}

	return &SessionClient{
		service:        cfg.Service,
		seed:           cfg.Seed,
		sendLimiter:    NewActionLimiterWithClock(cfg.SendCooldown, cfg.Now),
		endLimiter:     NewActionLimiterWithClock(cfg.EndCooldown, cfg.Now),
		endPromptDelay: cfg.EndPromptDelay,
		now:            cfg.Now,
		onChange:       cfg.OnChange,
		session: domain.ConversationSession{
			Status:        domain.SessionIdle,
			SeedRequestID: cfg.Seed.RequestID,
		},
	}, nil
}

// Start probes availability and opens the session. Valid only while
// idle. On any failure the client returns to idle and the user may
// retry; no session is created.
func (s *SessionClient) Start(ctx context.Context) error {
	if err := s.transition(domain.SessionIdle, domain.SessionStarting); err != nil {
		return err
	}

	available, err := s.service.Availability(ctx)
	if err != nil {
		s.forceStatus(domain.SessionIdle)
		return fmt.Errorf("availability probe: %w", err)
	}
	if !available {
		s.forceStatus(domain.SessionIdle)
		return fmt.Errorf("companion session: %w", domain.ErrServiceUnavailable)
	}

	result, err := s.service.Start(ctx, s.seed)
	if err != nil {
		s.forceStatus(domain.SessionIdle)
		return fmt.Errorf("start session: %w", err)
	}

	s.mu.Lock()
	s.session.ID = result.SessionID
	s.session.Status = domain.SessionActive
	s.appendLocked(domain.SenderAssistant, result.Response)
	s.epoch++
	snapshot := s.session.Clone()
	s.mu.Unlock()

	logger.Info("Session %s started", result.SessionID)
	s.notify(snapshot)
	return nil
}

// Send submits one user message. Valid only while active; attempts
// inside the send cooldown window are dropped with ErrRateLimited and
// make no network call and no transcript change.
//
// The user message is appended before the network call, so a failed send
// keeps it in the transcript; only the assistant reply is missing.
func (s *SessionClient) Send(ctx context.Context, text string) error {
	s.mu.Lock()
	if s.session.Status != domain.SessionActive {
		status := s.session.Status
		s.mu.Unlock()
		return fmt.Errorf("%w: cannot send while %s", domain.ErrSessionState, status)
	}
	if !s.sendLimiter.Allow() {
		s.mu.Unlock()
		return fmt.Errorf("send: %w", domain.ErrRateLimited)
	}
	s.appendLocked(domain.SenderUser, text)
	s.session.Status = domain.SessionSending
	s.epoch++
	sessionID := s.session.ID
	snapshot := s.session.Clone()
	s.mu.Unlock()
	s.notify(snapshot)

	result, err := s.service.Continue(ctx, sessionID, text)
	if err != nil {
		s.forceStatus(domain.SessionActive)
		return fmt.Errorf("send message: %w", err)
	}

	s.mu.Lock()
	s.appendLocked(domain.SenderAssistant, result.Response)
	s.session.Status = domain.SessionActive
	if !result.ShouldContinue {
		s.session.WindDown = true
	}
	s.epoch++
	epoch := s.epoch
	snapshot = s.session.Clone()
	s.mu.Unlock()
	s.notify(snapshot)

	if !result.ShouldContinue {
		logger.Debug("Server signalled wind-down; prompting in %s", s.endPromptDelay)
		time.AfterFunc(s.endPromptDelay, func() {
			s.promptEnd(epoch)
		})
	}
	return nil
}

// RequestEnd surfaces the end-confirmation prompt immediately, without
// waiting for the server to signal wind-down.
func (s *SessionClient) RequestEnd() error {
	return s.transition(domain.SessionActive, domain.SessionEndingConfirmation)
}

// ConfirmEnd closes the session on the server. Valid only while the
// end-confirmation prompt is up; subject to its own cooldown. A failed
// end leaves the prompt up - the server owns session lifetime, so the
// session is never force-closed locally.
func (s *SessionClient) ConfirmEnd(ctx context.Context) error {
	s.mu.Lock()
	if s.session.Status != domain.SessionEndingConfirmation {
		status := s.session.Status
		s.mu.Unlock()
		return fmt.Errorf("%w: cannot end while %s", domain.ErrSessionState, status)
	}
	if !s.endLimiter.Allow() {
		s.mu.Unlock()
		return fmt.Errorf("end: %w", domain.ErrRateLimited)
	}
	sessionID := s.session.ID
	s.mu.Unlock()

	if err := s.service.End(ctx, sessionID); err != nil {
		return fmt.Errorf("end session: %w", err)
	}

	s.mu.Lock()
	s.session.ID = ""
	s.session.Status = domain.SessionEnded
	s.session.WindDown = false
	s.session.LastActivityAt = s.now()
	s.epoch++
	snapshot := s.session.Clone()
	s.mu.Unlock()

	logger.Info("Session %s ended", sessionID)
	s.notify(snapshot)
	return nil
}

// DeclineEnd dismisses the end-confirmation prompt and resumes the
// conversation. No network call.
func (s *SessionClient) DeclineEnd() error {
	s.mu.Lock()
	if s.session.Status != domain.SessionEndingConfirmation {
		status := s.session.Status
		s.mu.Unlock()
		return fmt.Errorf("%w: %s is not %s", domain.ErrSessionState, status, domain.SessionEndingConfirmation)
	}
	s.session.Status = domain.SessionActive
	s.session.WindDown = false
	s.session.LastActivityAt = s.now()
	s.epoch++
	snapshot := s.session.Clone()
	s.mu.Unlock()

	s.notify(snapshot)
	return nil
}

// Reset returns an ended client to idle with an empty transcript, so a
// fresh session can be started from the same seed.
func (s *SessionClient) Reset() error {
	s.mu.Lock()
	if s.session.Status != domain.SessionEnded {
		status := s.session.Status
		s.mu.Unlock()
		return fmt.Errorf("%w: cannot reset while %s", domain.ErrSessionState, status)
	}
	s.session = domain.ConversationSession{
		Status:        domain.SessionIdle,
		SeedRequestID: s.seed.RequestID,
	}
	s.epoch++
	snapshot := s.session.Clone()
	s.mu.Unlock()

	s.notify(snapshot)
	return nil
}

// Status returns the current lifecycle state.
func (s *SessionClient) Status() domain.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Status
}

// Session returns a snapshot of the session, safe to retain.
func (s *SessionClient) Session() domain.ConversationSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Clone()
}

// promptEnd performs the delayed Active → EndingConfirmation transition
// scheduled by a shouldContinue=false reply. It is a no-op if any other
// transition happened since it was scheduled.
func (s *SessionClient) promptEnd(epoch int) {
	s.mu.Lock()
	if s.epoch != epoch || s.session.Status != domain.SessionActive {
		s.mu.Unlock()
		return
	}
	s.session.Status = domain.SessionEndingConfirmation
	s.session.LastActivityAt = s.now()
	s.epoch++
	snapshot := s.session.Clone()
	s.mu.Unlock()

	s.notify(snapshot)
}

// transition performs a guarded from → to state change.
func (s *SessionClient) transition(from, to domain.SessionStatus) error {
	s.mu.Lock()
	if s.session.Status != from {
		status := s.session.Status
		s.mu.Unlock()
		return fmt.Errorf("%w: %s is not %s", domain.ErrSessionState, status, from)
	}
	s.session.Status = to
	s.session.LastActivityAt = s.now()
	s.epoch++
	snapshot := s.session.Clone()
	s.mu.Unlock()

	s.notify(snapshot)
	return nil
}

// forceStatus sets the state unconditionally (failure recovery paths).
func (s *SessionClient) forceStatus(status domain.SessionStatus) {
	s.mu.Lock()
	s.session.Status = status
	s.session.LastActivityAt = s.now()
	s.epoch++
	snapshot := s.session.Clone()
	s.mu.Unlock()

	s.notify(snapshot)
}

// appendLocked appends a message to the transcript. Caller holds mu.
func (s *SessionClient) appendLocked(sender, content string) {
	s.session.Messages = append(s.session.Messages, domain.Message{
		ID:      uuid.NewString(),
		Sender:  sender,
		Content: content,
		SentAt:  s.now(),
	})
	s.session.LastActivityAt = s.now()
}

// notify publishes a snapshot to the subscriber, if any.
func (s *SessionClient) notify(snapshot domain.ConversationSession) {
	if s.onChange != nil {
		s.onChange(snapshot)
	}
}
