// Package sqlite provides the SQLite-backed analysis history store.
// The database lives under the mindline data directory and is created
// (with migrations applied) on first open.
package sqlite
