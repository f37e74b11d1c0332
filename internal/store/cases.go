package store

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/casewise/casewise/internal/catalog"
)

// ImportSource replaces every case imported from source with the given
// ones, numbered in slice order. The whole import is one transaction.
func (s *Store) ImportSource(source string, cases []catalog.Case) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM cases WHERE source = ?", source); err != nil {
		return fmt.Errorf("clear source %q: %w", source, err)
	}

	stmt, err := tx.Prepare(
		"INSERT INTO cases (source, position, data, imported_at) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for i, c := range cases {
		data, err := json.Marshal(c.AsJSONData())
		if err != nil {
			return fmt.Errorf("encoding case %d from %q: %w", i, source, err)
		}
		if _, err := stmt.Exec(source, i, string(data), now); err != nil {
			return fmt.Errorf("inserting case %d from %q: %w", i, source, err)
		}
	}

	return tx.Commit()
}

// LoadAll returns every stored case ordered by source then position, the
// same order an import saw them in.
func (s *Store) LoadAll() ([]catalog.Case, error) {
	rows, err := s.db.Query("SELECT source, position, data FROM cases ORDER BY source, position")
	if err != nil {
		return nil, fmt.Errorf("query cases: %w", err)
	}
	defer rows.Close()

	var cases []catalog.Case
	for rows.Next() {
		var (
			source   string
			position int
			data     string
		)
		if err := rows.Scan(&source, &position, &data); err != nil {
			return nil, fmt.Errorf("scan case row: %w", err)
		}
		c, err := decodeCase(data)
		if err != nil {
			return nil, fmt.Errorf("case %d from %q: %w", position, source, err)
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}

// LoadSource returns the cases imported from one source in position order.
func (s *Store) LoadSource(source string) ([]catalog.Case, error) {
	rows, err := s.db.Query(
		"SELECT position, data FROM cases WHERE source = ? ORDER BY position", source)
	if err != nil {
		return nil, fmt.Errorf("query cases for %q: %w", source, err)
	}
	defer rows.Close()

	var cases []catalog.Case
	for rows.Next() {
		var (
			position int
			data     string
		)
		if err := rows.Scan(&position, &data); err != nil {
			return nil, fmt.Errorf("scan case row: %w", err)
		}
		c, err := decodeCase(data)
		if err != nil {
			return nil, fmt.Errorf("case %d from %q: %w", position, source, err)
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}

// Sources returns the distinct import sources with their case counts.
func (s *Store) Sources() (map[string]int, error) {
	rows, err := s.db.Query("SELECT source, COUNT(*) FROM cases GROUP BY source")
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	sources := make(map[string]int)
	for rows.Next() {
		var (
			source string
			count  int
		)
		if err := rows.Scan(&source, &count); err != nil {
			return nil, fmt.Errorf("scan source row: %w", err)
		}
		sources[source] = count
	}
	return sources, rows.Err()
}

// DeleteSource removes every case imported from source.
func (s *Store) DeleteSource(source string) error {
	res, err := s.db.Exec("DELETE FROM cases WHERE source = ?", source)
	if err != nil {
		return fmt.Errorf("delete source %q: %w", source, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func decodeCase(data string) (catalog.Case, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding stored case: %w", err)
	}
	return catalog.NormalizeCase(raw)
}
