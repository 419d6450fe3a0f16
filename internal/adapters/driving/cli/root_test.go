package cli

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mindline-labs/mindline-cli/internal/adapters/driven/storage/memory"
	"github.com/mindline-labs/mindline-cli/internal/core/domain"
	"github.com/mindline-labs/mindline-cli/internal/core/ports/driven"
	"github.com/mindline-labs/mindline-cli/internal/core/ports/driving"
	"github.com/mindline-labs/mindline-cli/internal/core/services"
)

// mockOrchestrator returns a canned aggregate without touching the
// network.
type mockOrchestrator struct {
	agg domain.AnalysisAggregate
	err error
}

func (m *mockOrchestrator) Submit(_ context.Context, req domain.AnalysisRequest, onProgress driving.ProgressFunc) (domain.AnalysisAggregate, error) {
	agg := domain.NewAnalysisAggregate(req.ID)
	for _, result := range m.agg.Results {
		agg.Merge(result)
		if onProgress != nil && result.Succeeded() {
			onProgress(agg.Clone())
		}
	}
	return agg, m.err
}

// mockChatService is a scripted companion chat backend.
type mockChatService struct {
	available    bool
	replies      []string
	windDownAt   int
	continueCall int
	endCalls     int
}

func (m *mockChatService) Availability(_ context.Context) (bool, error) {
	return m.available, nil
}

func (m *mockChatService) Start(_ context.Context, _ domain.AnalysisAggregate) (driven.StartResult, error) {
	return driven.StartResult{SessionID: "sess-1", Response: "Hello, how are you feeling?"}, nil
}

func (m *mockChatService) Continue(_ context.Context, _, _ string) (driven.ContinueResult, error) {
	reply := "I hear you."
	if m.continueCall < len(m.replies) {
		reply = m.replies[m.continueCall]
	}
	m.continueCall++
	shouldContinue := m.windDownAt == 0 || m.continueCall < m.windDownAt
	return driven.ContinueResult{Response: reply, ShouldContinue: shouldContinue}, nil
}

func (m *mockChatService) End(_ context.Context, _ string) error {
	m.endCalls++
	return nil
}

func successAggregate(requestID string) domain.AnalysisAggregate {
	agg := domain.NewAnalysisAggregate(requestID)
	for _, name := range []string{domain.SourceFactorModel, domain.SourceSurvey, domain.SourceCombined} {
		agg.Merge(domain.SourceResult{
			Source:    name,
			Status:    domain.SourceSuccess,
			Payload:   json.RawMessage(`{"score":0.5}`),
			Timestamp: time.Now(),
		})
	}
	return agg
}

// setupTestServices swaps in in-memory services and returns a cleanup
// function restoring the previous wiring.
func setupTestServices() func() {
	oldConfig := configStore
	oldHistory := historyStore
	oldSession := sessionService
	oldOrchestrator := newOrchestrator
	oldController := newSessionController

	configStore = memory.NewConfigStore()
	historyStore = memory.NewHistoryStore()

	chat := &mockChatService{available: true}
	sessionService = chat

	newOrchestrator = func(_ bool) driving.AnalysisOrchestrator {
		return &mockOrchestrator{agg: successAggregate("req-test")}
	}

	newSessionController = func(seed domain.AnalysisAggregate) (driving.SessionController, error) {
		return services.NewSessionClient(services.SessionClientConfig{
			Service:        chat,
			Seed:           seed,
			SendCooldown:   time.Millisecond,
			EndCooldown:    time.Millisecond,
			EndPromptDelay: 5 * time.Millisecond,
		})
	}

	return func() {
		configStore = oldConfig
		historyStore = oldHistory
		sessionService = oldSession
		newOrchestrator = oldOrchestrator
		newSessionController = oldController
	}
}
