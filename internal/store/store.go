// Package store provides SQLite-backed persistence for imported case
// catalogues. The store lives inside the .casewise directory and preserves
// each case's source file and position, so indexing order survives a
// round trip through the database.
package store

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store manages the SQLite case database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// schemaSQL defines the SQLite schema for the case store. One row per
// case; (source, position) fixes the catalogue order.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS cases (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    source TEXT NOT NULL,
    position INTEGER NOT NULL,
    data TEXT NOT NULL,
    imported_at TEXT NOT NULL,
    UNIQUE(source, position)
);

CREATE INDEX IF NOT EXISTS idx_cases_source ON cases(source);
`

// DefaultFileName is the store database file name used when the config
// does not name one.
const DefaultFileName = "cases.db"

// Open opens or creates the case store database inside the specified
// .casewise directory. An empty name selects DefaultFileName. The schema
// is initialized if the database is new.
func Open(configDir, name string) (*Store, error) {
	if name == "" {
		name = DefaultFileName
	}
	dbPath := filepath.Join(configDir, name)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open case db: %w", err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &Store{db: db, dbPath: dbPath}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return s, nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(schemaSQL)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Clear removes every imported case.
func (s *Store) Clear() error {
	_, err := s.db.Exec("DELETE FROM cases")
	if err != nil {
		return fmt.Errorf("clear cases: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// DB returns the underlying database connection for advanced operations.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Stats describes the store contents.
type Stats struct {
	CaseCount   int64
	SourceCount int64
}

// GetStats returns statistics about the store contents.
func (s *Store) GetStats() (*Stats, error) {
	var stats Stats

	err := s.db.QueryRow("SELECT COUNT(*) FROM cases").Scan(&stats.CaseCount)
	if err != nil {
		return nil, fmt.Errorf("count cases: %w", err)
	}

	err = s.db.QueryRow("SELECT COUNT(DISTINCT source) FROM cases").Scan(&stats.SourceCount)
	if err != nil {
		return nil, fmt.Errorf("count sources: %w", err)
	}

	return &stats, nil
}
