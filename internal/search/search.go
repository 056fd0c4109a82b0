// Package search maintains a SQLite-backed full-text index over note
// content. It is derived state like the JSON indexes, but never
// authoritative: losing it only degrades search until the next rebuild.
package search

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/almahq/alma/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS notes (
	id      TEXT PRIMARY KEY,
	title   TEXT NOT NULL DEFAULT '',
	body    TEXT NOT NULL DEFAULT '',
	tags    TEXT NOT NULL DEFAULT '',
	project TEXT NOT NULL DEFAULT ''
);
`

// Hit is one search result.
type Hit struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Index wraps a sql.DB with note search operations.
type Index struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*Index, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("search: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("search: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("search: apply schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("search: apply fts schema: %w", err)
	}
	return &Index{conn: conn}, nil
}

// Close closes the underlying database connection.
func (ix *Index) Close() error {
	return ix.conn.Close()
}

// Upsert inserts or replaces the searchable representation of a note.
func (ix *Index) Upsert(note *models.Note) error {
	tx, err := ix.conn.Begin()
	if err != nil {
		return fmt.Errorf("search: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO notes (id, title, body, tags, project)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title   = excluded.title,
			body    = excluded.body,
			tags    = excluded.tags,
			project = excluded.project
	`, note.ID, note.Title, note.Content, strings.Join(note.Tags, " "), note.Project)
	if err != nil {
		return fmt.Errorf("search: upsert: %w", err)
	}
	if err := ftsUpsert(tx, note.ID, note.Title, note.Content, note.Tags); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a note from the search index.
func (ix *Index) Delete(id string) error {
	tx, err := ix.conn.Begin()
	if err != nil {
		return fmt.Errorf("search: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, id)
	_, _ = tx.Exec(`DELETE FROM notes WHERE id = ?`, id)
	return tx.Commit()
}

// Reset drops every row; used at the start of a full rebuild.
func (ix *Index) Reset() error {
	tx, err := ix.conn.Begin()
	if err != nil {
		return fmt.Errorf("search: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsReset(tx)
	_, _ = tx.Exec(`DELETE FROM notes`)
	return tx.Commit()
}
