package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Config holds application configuration.
type Config struct {
	BackendURL       string `json:"backendUrl"`       // empty = remote sync disabled
	APIKey           string `json:"apiKey"`           // backend API key
	DemoMode         bool   `json:"demoMode"`         // read-only mode, mutations are no-ops
	MaxImportRecords int    `json:"maxImportRecords"` // parser truncation limit
	ImportPauseMs    int    `json:"importPauseMs"`    // inter-batch pause during import
	LogLevel         string `json:"logLevel"`         // "debug" | "info" | "warn" | "error"
	PrettyLog        bool   `json:"prettyLog"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		MaxImportRecords: 2500,
		ImportPauseMs:    50,
		LogLevel:         "info",
		PrettyLog:        true,
	}
}

// LoadConfig reads config from the JSON file.
// Creates the file with defaults if it doesn't exist.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			config := DefaultConfig()
			// Create the config file with defaults
			if saveErr := SaveConfig(path, &config); saveErr != nil {
				// Non-fatal: return defaults even if save fails
				return &config, nil
			}
			return &config, nil
		}
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	// Apply defaults for missing fields
	defaults := DefaultConfig()
	if config.MaxImportRecords <= 0 {
		config.MaxImportRecords = defaults.MaxImportRecords
	}
	if config.ImportPauseMs <= 0 {
		config.ImportPauseMs = defaults.ImportPauseMs
	}
	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}

	return &config, nil
}

// SaveConfig writes config to the JSON file.
// Creates the directory if it doesn't exist.
func SaveConfig(path string, config *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfigFilePath returns the default config path: ~/.config/linkhaven/config.json
func DefaultConfigFilePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "linkhaven", "config.json"), nil
}
