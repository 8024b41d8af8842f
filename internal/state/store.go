// Package state persists per-document view flags in SQLite, so pin and
// toolbar choices survive restarts.
package state

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/ansuz/internal/diagram"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS view_state (
	doc_path   TEXT PRIMARY KEY,
	pinned     INTEGER NOT NULL DEFAULT 0,
	toolbar    INTEGER NOT NULL DEFAULT 1,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Store wraps a sql.DB with view-flag operations.
type Store struct {
	conn *sql.DB
}

// Verify *Store satisfies the orchestrator's flag store at compile time.
var _ diagram.FlagStore = (*Store)(nil)

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*Store, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("state: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("state: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("state: apply schema: %w", err)
	}
	return &Store{conn: conn}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Get returns the stored flags for a document path. The second result is
// false when the document has no saved state.
func (s *Store) Get(path string) (diagram.ViewFlags, bool, error) {
	var f diagram.ViewFlags
	row := s.conn.QueryRow(
		`SELECT pinned, toolbar FROM view_state WHERE doc_path = ?`, path)
	if err := row.Scan(&f.Pinned, &f.Toolbar); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return diagram.ViewFlags{}, false, nil
		}
		return diagram.ViewFlags{}, false, fmt.Errorf("state: get %s: %w", path, err)
	}
	return f, true, nil
}

// Put upserts the flags for a document path.
func (s *Store) Put(path string, f diagram.ViewFlags) error {
	_, err := s.conn.Exec(`
		INSERT INTO view_state (doc_path, pinned, toolbar, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(doc_path) DO UPDATE SET
			pinned = excluded.pinned,
			toolbar = excluded.toolbar,
			updated_at = CURRENT_TIMESTAMP`,
		path, f.Pinned, f.Toolbar)
	if err != nil {
		return fmt.Errorf("state: put %s: %w", path, err)
	}
	return nil
}

// Delete removes saved state for a document path.
func (s *Store) Delete(path string) error {
	if _, err := s.conn.Exec(`DELETE FROM view_state WHERE doc_path = ?`, path); err != nil {
		return fmt.Errorf("state: delete %s: %w", path, err)
	}
	return nil
}
