package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/mindline-labs/mindline-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/mindline-labs/mindline-cli/internal/core/domain"
	"github.com/mindline-labs/mindline-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.HistoryStore = (*Store)(nil)

// Store is a SQLite-backed implementation of driven.HistoryStore.
type Store struct {
	db   *sql.DB
	path string
}

// storedResult is the JSON shape of one source result in results_json.
// Failures are stored as their error message; rehydrated failure entries
// carry the message only, not the original sentinel.
type storedResult struct {
	Status    string          `json:"status"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Error     string          `json:"error,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewStore creates a new SQLite history store at the specified data
// directory. If dataDir is empty, defaults to ~/.mindline/data/history.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".mindline", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "history.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Save stores a completed analysis record.
func (s *Store) Save(ctx context.Context, record domain.AnalysisRecord) error {
	requestJSON, err := json.Marshal(record.Request)
	if err != nil {
		return fmt.Errorf("marshalling request: %w", err)
	}

	results := make(map[string]storedResult, len(record.Aggregate.Results))
	for name, result := range record.Aggregate.Results {
		stored := storedResult{
			Status:    string(result.Status),
			Payload:   result.Payload,
			Timestamp: result.Timestamp,
		}
		if result.Err != nil {
			stored.Error = result.Err.Error()
		}
		results[name] = stored
	}
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshalling results: %w", err)
	}

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO analyses (id, external_id, request_json, results_json, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, record.ID, record.ExternalID, string(requestJSON), string(resultsJSON), createdAt)
	if err != nil {
		return fmt.Errorf("inserting analysis: %w", err)
	}
	return nil
}

// Get retrieves a record by analysis request ID.
func (s *Store) Get(ctx context.Context, id string) (*domain.AnalysisRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, external_id, request_json, results_json, created_at
		FROM analyses WHERE id = ?
	`, id)
	return scanRecord(row)
}

// Latest returns the most recently saved record.
func (s *Store) Latest(ctx context.Context) (*domain.AnalysisRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, external_id, request_json, results_json, created_at
		FROM analyses ORDER BY created_at DESC, id DESC LIMIT 1
	`)
	return scanRecord(row)
}

// List returns records ordered newest first, up to limit.
func (s *Store) List(ctx context.Context, limit int) ([]domain.AnalysisRecord, error) {
	query := `
		SELECT id, external_id, request_json, results_json, created_at
		FROM analyses ORDER BY created_at DESC, id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying analyses: %w", err)
	}
	defer rows.Close()

	var records []domain.AnalysisRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecord hydrates one analysis row.
func scanRecord(row rowScanner) (*domain.AnalysisRecord, error) {
	var record domain.AnalysisRecord
	var requestJSON, resultsJSON string

	err := row.Scan(&record.ID, &record.ExternalID, &requestJSON, &resultsJSON, &record.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning analysis: %w", err)
	}

	if err := json.Unmarshal([]byte(requestJSON), &record.Request); err != nil {
		return nil, fmt.Errorf("unmarshalling request: %w", err)
	}

	var results map[string]storedResult
	if err := json.Unmarshal([]byte(resultsJSON), &results); err != nil {
		return nil, fmt.Errorf("unmarshalling results: %w", err)
	}

	record.Aggregate = domain.NewAnalysisAggregate(record.ID)
	for name, stored := range results {
		result := domain.SourceResult{
			Source:    name,
			Status:    domain.SourceStatus(stored.Status),
			Payload:   stored.Payload,
			Timestamp: stored.Timestamp,
		}
		if stored.Error != "" {
			result.Err = errors.New(stored.Error)
		}
		record.Aggregate.Results[name] = result
	}

	return &record, nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}
