// Package domain defines the core business entities for Mindline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - AnalysisRequest: A normalised, immutable analysis submission
//   - SourceResult: The outcome of one backend analysis source
//   - AnalysisAggregate: The accumulating per-request result map
//   - ConversationSession: A server-tracked companion chat session
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
