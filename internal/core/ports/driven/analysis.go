package driven

import (
	"context"
	"encoding/json"

	"github.com/mindline-labs/mindline-cli/internal/core/domain"
)

// AnalysisSource is one independent backend analysis service.
// Each adapter owns its endpoint, payload shape and call timeout.
//
// Implementations:
//   - factormodel: employee factor-model scorer
//   - surveyscore: survey Likert heuristic scorer
//   - insight: AI insight combiner
type AnalysisSource interface {
	// Name returns the source's stable name, used as the aggregate key.
	Name() string

	// Analyze submits the request to the backend and returns the raw
	// JSON response payload. Errors are classified into the domain
	// taxonomy (ErrTimeout, ErrNetworkFailure, ErrServiceUnavailable).
	Analyze(ctx context.Context, req domain.AnalysisRequest) (json.RawMessage, error)
}
