// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for convstore.
//
// Configuration is TOML with sensible defaults and environment variable
// overrides, resolved in order of precedence:
//   - environment variables (CONVSTORE_*)
//   - ~/.convstore/config.toml
//   - built-in defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete convstore configuration.
type Config struct {
	Storage StorageConfig `toml:"storage"`
	Watch   WatchConfig   `toml:"watch"`
	Export  ExportConfig  `toml:"export"`
}

// StorageConfig controls where and how conversations are stored.
type StorageConfig struct {
	// Dir is the storage directory. Empty means ~/.conversations.
	Dir string `toml:"dir"`
	// MaxConversations caps stored records; 0 means unlimited.
	MaxConversations int `toml:"max_conversations"`
}

// WatchConfig controls the index rebuild watcher.
type WatchConfig struct {
	// DebounceMs is how long the watcher waits after the last file event
	// before rebuilding the index.
	DebounceMs int `toml:"debounce_ms"`
}

// ExportConfig controls transcript export defaults.
type ExportConfig struct {
	// OutputDir is where exported transcripts are written.
	OutputDir string `toml:"output_dir"`
	// Format is the default export format: "txt", "md", or "json".
	Format string `toml:"format"`
	// IncludeMetadata includes the metadata header in exports.
	IncludeMetadata bool `toml:"include_metadata"`
}

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Dir:              "",
			MaxConversations: 0,
		},
		Watch: WatchConfig{
			DebounceMs: 500,
		},
		Export: ExportConfig{
			OutputDir:       ".",
			Format:          "txt",
			IncludeMetadata: true,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// Path returns the config file location (~/.convstore/config.toml).
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".convstore", "config.toml"), nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load loads configuration from the config file, falling back to defaults
// when the file is absent. Environment overrides are applied last, then the
// result is validated.
func Load() (*Config, error) {
	cfg := Default()

	path, err := Path()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadTOML(cfg, path); err != nil {
				return nil, err
			}
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific TOML file with env
// overrides and validation applied.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// ApplyEnvOverrides applies CONVSTORE_* environment variables on top of the
// loaded configuration.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("CONVSTORE_DIR"); v != "" {
		c.Storage.Dir = v
	}
	if v := os.Getenv("CONVSTORE_MAX_CONVERSATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Storage.MaxConversations = n
		}
	}
	if v := os.Getenv("CONVSTORE_WATCH_DEBOUNCE_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Watch.DebounceMs = n
		}
	}
	if v := os.Getenv("CONVSTORE_EXPORT_DIR"); v != "" {
		c.Export.OutputDir = v
	}
	if v := os.Getenv("CONVSTORE_EXPORT_FORMAT"); v != "" {
		c.Export.Format = v
	}
}

// Validate checks the configuration for out-of-range values.
func (c *Config) Validate() error {
	if c.Storage.MaxConversations < 0 {
		return fmt.Errorf("storage.max_conversations must be >= 0, got %d", c.Storage.MaxConversations)
	}
	if c.Watch.DebounceMs <= 0 {
		return fmt.Errorf("watch.debounce_ms must be > 0, got %d", c.Watch.DebounceMs)
	}
	switch c.Export.Format {
	case "txt", "md", "json":
	default:
		return fmt.Errorf("export.format must be one of txt, md, json; got %q", c.Export.Format)
	}
	return nil
}
