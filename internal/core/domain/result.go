package domain

import (
	"encoding/json"
	"time"
)

// Source names, in declared invocation order. Cheaper sources run first
// so their results reach subscribers before the expensive AI call.
const (
	SourceFactorModel = "ml"
	SourceSurvey      = "survey"
	SourceCombined    = "combined"
)

// SourceStatus tags a SourceResult as success or failure.
type SourceStatus string

// Source result statuses.
const (
	SourceSuccess SourceStatus = "success"
	SourceFailure SourceStatus = "failure"
)

// SourceResult is the outcome of one analysis source for one request.
// Exactly one of Payload or Err is meaningful, selected by Status.
type SourceResult struct {
	// Source is the name of the source that produced this result.
	Source string

	// Status tags the result as success or failure.
	Status SourceStatus

	// Payload is the source's raw JSON response on success.
	Payload json.RawMessage

	// Err is the classified failure on failure.
	Err error

	// Timestamp is when the source resolved.
	Timestamp time.Time
}

// Succeeded reports whether the result is a success.
func (r SourceResult) Succeeded() bool {
	return r.Status == SourceSuccess
}

// AnalysisAggregate accumulates the latest SourceResult per source for a
// single request. Results accumulate monotonically: once a source has a
// Success entry it is never removed or replaced by a later Failure.
type AnalysisAggregate struct {
	// RequestID identifies the request this aggregate belongs to.
	RequestID string

	// Results maps source name to its latest result.
	Results map[string]SourceResult
}

// NewAnalysisAggregate creates an empty aggregate for a request.
func NewAnalysisAggregate(requestID string) AnalysisAggregate {
	return AnalysisAggregate{
		RequestID: requestID,
		Results:   make(map[string]SourceResult),
	}
}

// Merge records a source result, preserving monotonicity: a Failure never
// replaces an existing Success for the same source.
func (a AnalysisAggregate) Merge(result SourceResult) {
	if existing, ok := a.Results[result.Source]; ok {
		if existing.Succeeded() && !result.Succeeded() {
			return
		}
	}
	a.Results[result.Source] = result
}

// Clone returns a snapshot copy safe to publish to subscribers.
// The result map is copied; payloads are immutable by convention.
func (a AnalysisAggregate) Clone() AnalysisAggregate {
	results := make(map[string]SourceResult, len(a.Results))
	for name, r := range a.Results {
		results[name] = r
	}
	return AnalysisAggregate{
		RequestID: a.RequestID,
		Results:   results,
	}
}

// Succeeded returns the names of sources with a Success entry.
func (a AnalysisAggregate) Succeeded() []string {
	var names []string
	for name, r := range a.Results {
		if r.Succeeded() {
			names = append(names, name)
		}
	}
	return names
}

// Failed returns the names of sources with a Failure entry.
func (a AnalysisAggregate) Failed() []string {
	var names []string
	for name, r := range a.Results {
		if !r.Succeeded() {
			names = append(names, name)
		}
	}
	return names
}
