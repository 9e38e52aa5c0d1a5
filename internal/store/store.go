// Package store persists tasks, categories, and tags in a local sqlite
// database. All reads and writes go through a single open transaction so
// callers see their own uncommitted changes; Commit makes them durable and
// Rollback discards them.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

const schemaVersion = "1"

// Store wraps the database connection and the current session transaction.
type Store struct {
	db *sql.DB
	tx *sql.Tx
}

// Open creates a database connection at the given path, initializes the
// schema, and begins the first session transaction.
func Open(path string) (*Store, error) {
	if path == "" {
		var err error
		path, err = defaultPath()
		if err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// The session transaction serializes all access anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("beginning session: %w", err)
	}

	s := &Store{db: db, tx: tx}
	if err := s.SetSetting(context.Background(), "schema_version", schemaVersion); err != nil {
		s.Close()
		return nil, fmt.Errorf("recording schema version: %w", err)
	}
	if err := s.Commit(context.Background()); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// defaultPath returns the database location under the XDG data directory,
// falling back to ~/.local/share.
func defaultPath() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, ".local", "share")
	}

	appDir := filepath.Join(dataDir, "taskdeck")
	if err := os.MkdirAll(appDir, 0o755); err != nil {
		return "", err
	}

	return filepath.Join(appDir, "taskdeck.db"), nil
}

// Commit makes the session's pending changes durable and opens a fresh
// transaction. Safe to call when nothing is pending.
func (s *Store) Commit(ctx context.Context) error {
	if err := s.tx.Commit(); err != nil {
		return fmt.Errorf("committing session: %w", err)
	}
	return s.begin(ctx)
}

// Rollback discards the session's pending changes and opens a fresh
// transaction. Safe to call when nothing is pending.
func (s *Store) Rollback(ctx context.Context) error {
	if err := s.tx.Rollback(); err != nil {
		return fmt.Errorf("rolling back session: %w", err)
	}
	return s.begin(ctx)
}

func (s *Store) begin(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning session: %w", err)
	}
	s.tx = tx
	return nil
}

// Close rolls back any pending changes and closes the connection.
func (s *Store) Close() error {
	if s.tx != nil {
		_ = s.tx.Rollback()
	}
	return s.db.Close()
}

// GetSetting retrieves a setting value by key.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.tx.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetSetting sets a setting value.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.tx.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
