// Package history keeps a local record of PDF exports.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"gemini-desktop/pkg/logger"
)

type DB struct {
	db  *sql.DB
	log *logger.Logger
}

// Export is one completed PDF export.
type Export struct {
	Path      string
	Pages     int
	CreatedAt time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS exports (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    path TEXT NOT NULL,
    pages INTEGER NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// New opens the export history database in the user config directory.
func New(log *logger.Logger) (*DB, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user config directory: %w", err)
	}

	dbDir := filepath.Join(configDir, "gemini-desktop")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	return Open(filepath.Join(dbDir, "exports.db"), log)
}

// Open opens (or creates) the database at path.
func Open(path string, log *logger.Logger) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL mode for better concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &DB{db: db, log: log}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Record stores a completed export.
func (d *DB) Record(path string, pages int) error {
	_, err := d.db.Exec("INSERT INTO exports (path, pages) VALUES (?, ?)", path, pages)
	if err != nil {
		return fmt.Errorf("failed to insert export: %w", err)
	}
	d.log.Debug("Recorded export", "path", path, "pages", pages)
	return nil
}

// Recent returns up to n exports, newest first.
func (d *DB) Recent(n int) ([]Export, error) {
	rows, err := d.db.Query(
		"SELECT path, pages, created_at FROM exports ORDER BY created_at DESC, id DESC LIMIT ?", n)
	if err != nil {
		return nil, fmt.Errorf("failed to query exports: %w", err)
	}
	defer rows.Close()

	var exports []Export
	for rows.Next() {
		var e Export
		if err := rows.Scan(&e.Path, &e.Pages, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan export: %w", err)
		}
		exports = append(exports, e)
	}
	return exports, rows.Err()
}

// Cleanup removes exports recorded before the retention window.
func (d *DB) Cleanup(olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)
	_, err := d.db.Exec("DELETE FROM exports WHERE created_at < ?", cutoff)
	if err != nil {
		return fmt.Errorf("failed to cleanup old exports: %w", err)
	}
	return nil
}
