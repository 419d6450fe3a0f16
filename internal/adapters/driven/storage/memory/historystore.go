package memory

import (
	"context"
	"sync"

	"github.com/mindline-labs/mindline-cli/internal/core/domain"
	"github.com/mindline-labs/mindline-cli/internal/core/ports/driven"
)

// Ensure HistoryStore implements the interface.
var _ driven.HistoryStore = (*HistoryStore)(nil)

// HistoryStore is an in-memory implementation of driven.HistoryStore for
// testing and for runs with persistence disabled.
type HistoryStore struct {
	mu      sync.RWMutex
	records []domain.AnalysisRecord // insertion order, oldest first
}

// NewHistoryStore creates a new in-memory history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{}
}

// Save stores a completed analysis record.
func (s *HistoryStore) Save(_ context.Context, record domain.AnalysisRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

// Get retrieves a record by analysis request ID.
func (s *HistoryStore) Get(_ context.Context, id string) (*domain.AnalysisRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].ID == id {
			record := s.records[i]
			return &record, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Latest returns the most recently saved record.
func (s *HistoryStore) Latest(_ context.Context) (*domain.AnalysisRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) == 0 {
		return nil, domain.ErrNotFound
	}
	record := s.records[len(s.records)-1]
	return &record, nil
}

// List returns records ordered newest first, up to limit.
func (s *HistoryStore) List(_ context.Context, limit int) ([]domain.AnalysisRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.AnalysisRecord, 0, len(s.records))
	for i := len(s.records) - 1; i >= 0; i-- {
		out = append(out, s.records[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Close releases resources.
func (s *HistoryStore) Close() error {
	return nil
}
