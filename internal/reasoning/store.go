// Package reasoning implements the Reasoning Bank (Component E): an
// embedded SQLite store plus the four-phase Retrieve/Judge/Distill/
// Consolidate learning cycle and Export/Import.
//
// Storage mechanics are grounded on the teacher's internal/learning.Store
// (go:embed schema, idempotent initSchema, sql.NullString scanning,
// JSON-marshal-into-TEXT-column idiom) and internal/learning/migration.go
// (schema_version bookkeeping). The cycle algorithms themselves are
// grounded on the Rust reference implementation's reasoning/bank.rs.
package reasoning

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Store is the single-owner handle over the Reasoning Bank's SQLite
// database. Per spec.md §5, a single exclusive lock over the DB handle
// serializes all four phases; tetrad holds that lock across reads as well
// as writes, stricter than the teacher's unguarded read helpers.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// NewStore opens (creating if necessary) the SQLite database at dbPath and
// applies the embedded schema.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("reasoning: mkdir %s: %w", dir, err)
			}
		}
	}
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("reasoning: open %s: %w", dbPath, err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("reasoning: init schema: %w", err)
	}
	_, err := s.db.Exec(`INSERT OR IGNORE INTO schema_version (version, applied_at) VALUES (1, datetime('now'))`)
	if err != nil {
		return fmt.Errorf("reasoning: record schema version: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// withLock runs fn while holding the store's exclusive lock, matching the
// single-exclusive-lock policy of spec.md §5.
func (s *Store) withLock(fn func(ctx context.Context, db *sql.DB) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(context.Background(), s.db)
}
