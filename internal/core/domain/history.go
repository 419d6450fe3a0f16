package domain

import "time"

// AnalysisRecord is a completed analysis retained in the history store,
// so later commands can list past runs or seed a chat session from one.
type AnalysisRecord struct {
	// ID is the analysis request ID.
	ID string

	// ExternalID is the optional caller-supplied correlation identifier.
	ExternalID string

	// Request is the normalised submission.
	Request AnalysisRequest

	// Aggregate is the final per-source result map.
	Aggregate AnalysisAggregate

	// CreatedAt is when the record was saved.
	CreatedAt time.Time
}
