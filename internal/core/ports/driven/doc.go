// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - AnalysisSource: One backend analysis service (factor model, survey, combined)
//   - SessionService: The companion chat backend (start/continue/end)
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - HistoryStore: Analysis history persistence. Without it, history
//     commands are disabled and chat must be seeded from a fresh analysis.
package driven
