package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mbuchner/linkhaven/internal/model"
)

const currentSchemaVersion = 1

// SQLiteAdapter implements Adapter using a keyed blob table in SQLite.
type SQLiteAdapter struct {
	db   *sql.DB
	path string
}

// NewSQLiteAdapter creates a SQLiteAdapter with the given database path.
func NewSQLiteAdapter(path string) (*SQLiteAdapter, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys and set pragmas for performance
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	a := &SQLiteAdapter{db: db, path: path}
	if err := a.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return a, nil
}

// Path returns the database file path.
func (a *SQLiteAdapter) Path() string {
	return a.path
}

// Close closes the database connection.
func (a *SQLiteAdapter) Close() error {
	return a.db.Close()
}

// migrate runs database migrations.
func (a *SQLiteAdapter) migrate() error {
	var version int
	err := a.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}

	if version < 1 {
		if err := a.migrateV1(); err != nil {
			return err
		}
	}

	return nil
}

// migrateV1 creates the initial schema.
func (a *SQLiteAdapter) migrateV1() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS cache (
			key TEXT PRIMARY KEY NOT NULL,
			value BLOB NOT NULL,
			updated_at TEXT NOT NULL
		);

		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := a.db.Exec(schema)
	return err
}

// Load reads the state blob stored under key.
func (a *SQLiteAdapter) Load(key string) (*model.State, bool, error) {
	var blob []byte
	err := a.db.QueryRow("SELECT value FROM cache WHERE key = ?", key).Scan(&blob)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var state model.State
	if err := json.Unmarshal(blob, &state); err != nil {
		return nil, false, fmt.Errorf("decode cached state: %w", err)
	}
	state.Normalize()

	return &state, true, nil
}

// Save writes the state blob under key.
func (a *SQLiteAdapter) Save(key string, state *model.State) error {
	blob, err := json.Marshal(state)
	if err != nil {
		return err
	}

	_, err = a.db.Exec(`
		INSERT INTO cache (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, blob, time.Now().Format(time.RFC3339))
	return err
}

// Clear removes the blob stored under key.
func (a *SQLiteAdapter) Clear(key string) error {
	_, err := a.db.Exec("DELETE FROM cache WHERE key = ?", key)
	return err
}
