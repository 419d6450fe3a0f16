package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindline-labs/mindline-cli/internal/core/domain"
)

// --- Mock implementations ---

// mockSource implements driven.AnalysisSource for testing.
type mockSource struct {
	name    string
	payload json.RawMessage
	err     error
	calls   int
	onCall  func()
}

func (m *mockSource) Name() string {
	return m.name
}

func (m *mockSource) Analyze(_ context.Context, _ domain.AnalysisRequest) (json.RawMessage, error) {
	m.calls++
	if m.onCall != nil {
		m.onCall()
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.payload, nil
}

func testRequest() domain.AnalysisRequest {
	return domain.AnalysisRequest{
		ID: "req-1",
		Factors: domain.EmployeeFactors{
			Designation:        3,
			ResourceAllocation: 7,
			MentalFatigueScore: 6,
			CompanyType:        domain.CompanyTypeService,
			WFH:                "Yes",
			Gender:             "Male",
		},
		SurveyAnswers: []int{3, 3, 3, 3, 3},
	}
}

func threeSources() (*mockSource, *mockSource, *mockSource) {
	ml := &mockSource{name: domain.SourceFactorModel, payload: json.RawMessage(`{"score":0.71}`)}
	survey := &mockSource{name: domain.SourceSurvey, payload: json.RawMessage(`{"riskLevel":"medium"}`)}
	combined := &mockSource{name: domain.SourceCombined, payload: json.RawMessage(`{"summary":"ok"}`)}
	return ml, survey, combined
}

// TestOrchestrator_AllSucceed tests that progress fires once per source,
// in declared order, and the final aggregate is the union
func TestOrchestrator_AllSucceed(t *testing.T) {
	ml, survey, combined := threeSources()
	orch := NewProgressiveOrchestrator(OrchestratorConfig{}, ml, survey, combined)

	var progressOrder []string
	var progressSizes []int
	agg, err := orch.Submit(context.Background(), testRequest(), func(snapshot domain.AnalysisAggregate) {
		progressSizes = append(progressSizes, len(snapshot.Results))
		progressOrder = append(progressOrder, snapshot.Succeeded()...)
	})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, progressSizes)
	assert.Len(t, agg.Results, 3)
	assert.ElementsMatch(t,
		[]string{domain.SourceFactorModel, domain.SourceSurvey, domain.SourceCombined},
		agg.Succeeded())

	// First snapshot must contain only the factor model result.
	assert.Equal(t, domain.SourceFactorModel, progressOrder[0])
}

// TestOrchestrator_SnapshotsAreIndependent tests copy-on-publish
func TestOrchestrator_SnapshotsAreIndependent(t *testing.T) {
	ml, survey, combined := threeSources()
	orch := NewProgressiveOrchestrator(OrchestratorConfig{}, ml, survey, combined)

	var snapshots []domain.AnalysisAggregate
	_, err := orch.Submit(context.Background(), testRequest(), func(snapshot domain.AnalysisAggregate) {
		snapshots = append(snapshots, snapshot)
	})
	require.NoError(t, err)

	// Earlier snapshots must not have grown as later sources resolved.
	require.Len(t, snapshots, 3)
	assert.Len(t, snapshots[0].Results, 1)
	assert.Len(t, snapshots[1].Results, 2)
	assert.Len(t, snapshots[2].Results, 3)
}

// TestOrchestrator_FailFast tests the abort-on-first-failure policy:
// one progress call, submit returns the error, third source never called
func TestOrchestrator_FailFast(t *testing.T) {
	ml, survey, combined := threeSources()
	survey.err = domain.ErrTimeout
	orch := NewProgressiveOrchestrator(OrchestratorConfig{FailFast: true}, ml, survey, combined)

	progressCalls := 0
	agg, err := orch.Submit(context.Background(), testRequest(), func(domain.AnalysisAggregate) {
		progressCalls++
	})

	assert.Equal(t, 1, progressCalls)
	assert.Equal(t, 0, combined.calls)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTimeout)

	var srcErr *domain.SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, domain.SourceSurvey, srcErr.Source)

	// The partial aggregate still carries the first source's success.
	assert.ElementsMatch(t, []string{domain.SourceFactorModel}, agg.Succeeded())
}

// TestOrchestrator_IsolatedDefault tests that by default every source is
// attempted and failures become aggregate entries
func TestOrchestrator_IsolatedDefault(t *testing.T) {
	ml, survey, combined := threeSources()
	survey.err = domain.ErrNetworkFailure
	orch := NewProgressiveOrchestrator(OrchestratorConfig{}, ml, survey, combined)

	progressCalls := 0
	agg, err := orch.Submit(context.Background(), testRequest(), func(domain.AnalysisAggregate) {
		progressCalls++
	})
	require.NoError(t, err)

	assert.Equal(t, 1, ml.calls)
	assert.Equal(t, 1, survey.calls)
	assert.Equal(t, 1, combined.calls)

	// Progress fires only for successful sources.
	assert.Equal(t, 2, progressCalls)

	assert.ElementsMatch(t, []string{domain.SourceFactorModel, domain.SourceCombined}, agg.Succeeded())
	assert.ElementsMatch(t, []string{domain.SourceSurvey}, agg.Failed())
	assert.ErrorIs(t, agg.Results[domain.SourceSurvey].Err, domain.ErrNetworkFailure)
}

// TestOrchestrator_NilProgress tests that a nil callback is accepted
func TestOrchestrator_NilProgress(t *testing.T) {
	ml, survey, combined := threeSources()
	orch := NewProgressiveOrchestrator(OrchestratorConfig{}, ml, survey, combined)

	agg, err := orch.Submit(context.Background(), testRequest(), nil)
	require.NoError(t, err)
	assert.Len(t, agg.Results, 3)
}

// TestOrchestrator_CancellationStopsSequence tests that cancelling the
// context between sources abandons the remaining sources
func TestOrchestrator_CancellationStopsSequence(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	ml, survey, combined := threeSources()
	ml.onCall = cancel // cancel while the first source is in flight
	orch := NewProgressiveOrchestrator(OrchestratorConfig{}, ml, survey, combined)

	agg, err := orch.Submit(ctx, testRequest(), nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, survey.calls)
	assert.Equal(t, 0, combined.calls)
	assert.Empty(t, agg.Results)
}
