// Package history records build outcomes in SQLite so operators can ask
// what changed and when without trawling logs.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one recorded build.
type Entry struct {
	BuildID      string        `json:"build_id"`
	CreatedAt    time.Time     `json:"created_at"`
	TreeHash     string        `json:"tree_hash"`
	Outcome      string        `json:"outcome"`
	Duration     time.Duration `json:"duration"`
	Files        int           `json:"files"`
	Declarations int           `json:"declarations"`
	Violations   int           `json:"violations"`
}

// Store is a SQLite-backed build history.
type Store struct {
	db *sql.DB
	mu sync.Mutex

	// keep bounds retained rows; 0 keeps everything.
	keep int
}

// Open creates or opens a history database. Use ":memory:" for tests.
func Open(dbPath string, keep int) (*Store, error) {
	if dbPath != ":memory:" {
		if err := ensureDir(dbPath); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &Store{db: db, keep: keep}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		build_id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL,
		tree_hash TEXT NOT NULL,
		outcome TEXT NOT NULL,
		duration_ms INTEGER NOT NULL,
		files INTEGER NOT NULL,
		declarations INTEGER NOT NULL,
		violations INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_builds_created_at ON builds(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append records a build and prunes old rows past the retention bound.
func (s *Store) Append(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO builds (build_id, created_at, tree_hash, outcome, duration_ms, files, declarations, violations) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		e.BuildID, e.CreatedAt.Unix(), e.TreeHash, e.Outcome, e.Duration.Milliseconds(), e.Files, e.Declarations, e.Violations,
	)
	if err != nil {
		return fmt.Errorf("insert build: %w", err)
	}

	if s.keep > 0 {
		_, err = s.db.ExecContext(ctx,
			"DELETE FROM builds WHERE build_id NOT IN (SELECT build_id FROM builds ORDER BY created_at DESC, build_id DESC LIMIT ?)",
			s.keep,
		)
		if err != nil {
			return fmt.Errorf("prune builds: %w", err)
		}
	}
	return nil
}

// Recent returns up to limit builds, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT build_id, created_at, tree_hash, outcome, duration_ms, files, declarations, violations FROM builds ORDER BY created_at DESC, build_id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var createdAt int64
		var durationMS int64
		if err := rows.Scan(&e.BuildID, &createdAt, &e.TreeHash, &e.Outcome, &durationMS, &e.Files, &e.Declarations, &e.Violations); err != nil {
			return nil, fmt.Errorf("scan build: %w", err)
		}
		e.CreatedAt = time.Unix(createdAt, 0).UTC()
		e.Duration = time.Duration(durationMS) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
