package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mbuchner/linkhaven/internal/model"
)

// StateKey is the key under which the single device state blob is stored.
const StateKey = "state"

// Adapter defines the interface for durable device-local key/blob storage.
// Implementations must surface failures without corrupting in-memory state.
type Adapter interface {
	// Load reads the state stored under key. The second return value is
	// false when nothing is stored under the key.
	Load(key string) (*model.State, bool, error)
	Save(key string, state *model.State) error
	Clear(key string) error
}

// JSONAdapter implements Adapter using one JSON file per key.
type JSONAdapter struct {
	dir string
}

// NewJSONAdapter creates a JSONAdapter rooted at the given directory.
func NewJSONAdapter(dir string) *JSONAdapter {
	return &JSONAdapter{dir: dir}
}

// Dir returns the storage directory.
func (a *JSONAdapter) Dir() string {
	return a.dir
}

func (a *JSONAdapter) path(key string) string {
	return filepath.Join(a.dir, key+".json")
}

// Load reads the state from the key's JSON file.
// A missing file is reported as absent, not as an error.
func (a *JSONAdapter) Load(key string) (*model.State, bool, error) {
	data, err := os.ReadFile(a.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var state model.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, false, fmt.Errorf("decode cached state: %w", err)
	}
	state.Normalize()

	return &state, true, nil
}

// Save writes the state to the key's JSON file.
// Creates the directory if it doesn't exist.
func (a *JSONAdapter) Save(key string, state *model.State) error {
	if err := os.MkdirAll(a.dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(a.path(key), data, 0644)
}

// Clear removes the key's JSON file. Clearing an absent key is not an error.
func (a *JSONAdapter) Clear(key string) error {
	err := os.Remove(a.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// DefaultDataDir returns the default data directory: ~/.config/linkhaven
func DefaultDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "linkhaven"), nil
}

// OpenAdapter opens the appropriate storage backend for the data directory.
// Prefers SQLite if the database file exists, otherwise falls back to JSON.
func OpenAdapter(dataDir string) (Adapter, error) {
	sqlitePath := filepath.Join(dataDir, "linkhaven.db")
	if _, err := os.Stat(sqlitePath); err == nil {
		return NewSQLiteAdapter(sqlitePath)
	}
	return NewJSONAdapter(dataDir), nil
}
