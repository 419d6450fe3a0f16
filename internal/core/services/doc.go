// Package services implements the driving port interfaces.
// Services contain the core business logic: request normalisation, the
// progressive analysis orchestrator and the conversation session client,
// orchestrating calls to driven ports (adapters).
package services
