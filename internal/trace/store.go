package trace

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// MemoryPath opens a journal that lives only as long as the process.
const MemoryPath = ":memory:"

// Store provides durable storage for run journals.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and the schema automatically.
//
// This function is idempotent - safe to call multiple times on the same file.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// A single connection keeps ":memory:" databases alive between queries
	// and avoids SQLITE_BUSY on file databases.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// Run describes one harness invocation.
type Run struct {
	ID        string `json:"id"`
	AuditType string `json:"audit_type"`
	SiteID    string `json:"site_id"`
	StartedAt string `json:"started_at"`
	Calls     int    `json:"calls"`
}

// WriteRun inserts a run record. Duplicate IDs are silently ignored.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, audit_type, site_id, started_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, run.ID, run.AuditType, run.SiteID, run.StartedAt)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// Runs lists all runs with their call counts, oldest first.
// Returns an empty slice (not nil) if the journal is empty.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.audit_type, r.site_id, r.started_at,
		       (SELECT COUNT(*) FROM calls c WHERE c.run_id = r.id)
		FROM runs r
		ORDER BY r.started_at ASC, r.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.AuditType, &r.SiteID, &r.StartedAt, &r.Calls); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// WriteCall appends a call to a run.
func (s *Store) WriteCall(ctx context.Context, runID string, c Call) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO calls (run_id, seq, service, operation, args, result, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, runID, c.Seq, c.Service, c.Operation, string(c.Args), string(c.Result), c.Error)
	if err != nil {
		return fmt.Errorf("write call: %w", err)
	}
	return nil
}

// ReadCalls returns all calls for a run, ordered by seq.
// Returns an empty slice (not nil) if the run has no calls.
func (s *Store) ReadCalls(ctx context.Context, runID string) ([]Call, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, service, operation, args, result, error
		FROM calls
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query calls: %w", err)
	}
	defer rows.Close()

	calls := []Call{}
	for rows.Next() {
		var (
			c            Call
			args, result string
		)
		if err := rows.Scan(&c.Seq, &c.Service, &c.Operation, &args, &result, &c.Error); err != nil {
			return nil, fmt.Errorf("scan call: %w", err)
		}
		c.Args = []byte(args)
		c.Result = []byte(result)
		calls = append(calls, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate calls: %w", err)
	}
	return calls, nil
}
