package driving

import (
	"context"

	"github.com/mindline-labs/mindline-cli/internal/core/domain"
)

// ProgressFunc receives a snapshot of the aggregate after each source
// resolves. Snapshots arrive in declared source order, never concurrently,
// and each is an independent copy the receiver may retain.
type ProgressFunc func(domain.AnalysisAggregate)

// AnalysisOrchestrator fans one analysis request out to the backend
// sources and reports results as they arrive.
type AnalysisOrchestrator interface {
	// Submit runs the configured sources for one request. onProgress may
	// be nil. The returned aggregate is the final snapshot; under the
	// default isolated policy every source is attempted and failures
	// appear as Failure entries, while under fail-fast the first failure
	// aborts the remaining sources and is returned as the error.
	Submit(ctx context.Context, req domain.AnalysisRequest, onProgress ProgressFunc) (domain.AnalysisAggregate, error)
}
