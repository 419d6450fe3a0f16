package services

import (
	"context"
	"time"

	"github.com/mindline-labs/mindline-cli/internal/core/domain"
	"github.com/mindline-labs/mindline-cli/internal/core/ports/driven"
	"github.com/mindline-labs/mindline-cli/internal/core/ports/driving"
	"github.com/mindline-labs/mindline-cli/internal/logger"
)

// Ensure ProgressiveOrchestrator implements the interface.
var _ driving.AnalysisOrchestrator = (*ProgressiveOrchestrator)(nil)

// OrchestratorConfig configures the orchestrator's failure policy.
type OrchestratorConfig struct {
	// FailFast aborts the remaining sources on the first failure and
	// returns that failure from Submit. The default (false) attempts
	// every source and records failures as aggregate entries, so the
	// caller still sees whatever analyses did succeed.
	FailFast bool
}

// ProgressiveOrchestrator fans one analysis request out to the backend
// sources, serially and in declared order, publishing a snapshot of the
// accumulating aggregate after each successful source. Serial execution
// gives subscribers a deterministic, strictly increasing arrival order,
// and puts cheap results on screen before the expensive AI call resolves.
//
// The orchestrator performs no retries: re-running a possibly expensive
// AI call without the user asking for it is undesirable.
type ProgressiveOrchestrator struct {
	sources  []driven.AnalysisSource
	failFast bool
}

// NewProgressiveOrchestrator creates an orchestrator over the given
// sources. Sources are invoked in the order given.
func NewProgressiveOrchestrator(cfg OrchestratorConfig, sources ...driven.AnalysisSource) *ProgressiveOrchestrator {
	return &ProgressiveOrchestrator{
		sources:  sources,
		failFast: cfg.FailFast,
	}
}

// Submit runs the configured sources for one request.
//
// Each source call is awaited to completion before the next begins.
// onProgress (if non-nil) is invoked exactly once per successful source
// with a copy-on-publish snapshot of the aggregate so far. A failed
// source becomes a Failure entry in the aggregate (or, under FailFast,
// aborts the run); a Failure never displaces a Success already recorded
// for the same source.
//
// A cancelled context stops the sequence at the next source boundary and
// Submit returns the partial aggregate together with ctx.Err().
func (o *ProgressiveOrchestrator) Submit(
	ctx context.Context,
	req domain.AnalysisRequest,
	onProgress driving.ProgressFunc,
) (domain.AnalysisAggregate, error) {
	agg := domain.NewAnalysisAggregate(req.ID)

	logger.Section("Analysis")
	logger.Info("Submitting request %s to %d sources", req.ID, len(o.sources))

	for _, source := range o.sources {
		if err := ctx.Err(); err != nil {
			return agg.Clone(), err
		}

		logger.Debug("Calling source %s", source.Name())
		payload, err := source.Analyze(ctx, req)

		// A cancellation mid-call is the caller's doing, not a source
		// failure. Discard the outcome and stop.
		if ctx.Err() != nil {
			return agg.Clone(), ctx.Err()
		}

		if err != nil {
			srcErr := &domain.SourceError{Source: source.Name(), Err: err}
			logger.Warn("Source %s failed: %v", source.Name(), err)

			if o.failFast {
				return agg.Clone(), srcErr
			}

			agg.Merge(domain.SourceResult{
				Source:    source.Name(),
				Status:    domain.SourceFailure,
				Err:       srcErr,
				Timestamp: time.Now(),
			})
			continue
		}

		agg.Merge(domain.SourceResult{
			Source:    source.Name(),
			Status:    domain.SourceSuccess,
			Payload:   payload,
			Timestamp: time.Now(),
		})
		logger.Debug("Source %s resolved", source.Name())

		if onProgress != nil {
			onProgress(agg.Clone())
		}
	}

	logger.Info("Analysis complete: %d succeeded, %d failed", len(agg.Succeeded()), len(agg.Failed()))
	return agg.Clone(), nil
}
