package driven

import (
	"context"

	"github.com/mindline-labs/mindline-cli/internal/core/domain"
)

// HistoryStore persists completed analyses so later commands can list
// past runs or seed a chat session from one. Optional - when nil,
// history features are disabled.
type HistoryStore interface {
	// Save stores a completed analysis record.
	Save(ctx context.Context, record domain.AnalysisRecord) error

	// Get retrieves a record by analysis request ID.
	// Returns domain.ErrNotFound if no such record exists.
	Get(ctx context.Context, id string) (*domain.AnalysisRecord, error)

	// Latest returns the most recently saved record.
	// Returns domain.ErrNotFound if the store is empty.
	Latest(ctx context.Context) (*domain.AnalysisRecord, error)

	// List returns records ordered newest first, up to limit.
	// A limit of 0 means no limit.
	List(ctx context.Context, limit int) ([]domain.AnalysisRecord, error)

	// Close releases resources.
	Close() error
}
