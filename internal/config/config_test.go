// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Empty(t, cfg.Storage.Dir)
	assert.Equal(t, 0, cfg.Storage.MaxConversations)
	assert.Equal(t, 500, cfg.Watch.DebounceMs)
	assert.Equal(t, ".", cfg.Export.OutputDir)
	assert.Equal(t, "txt", cfg.Export.Format)
	assert.True(t, cfg.Export.IncludeMetadata)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[storage]
dir = "/data/conversations"
max_conversations = 25

[watch]
debounce_ms = 1000

[export]
format = "md"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/conversations", cfg.Storage.Dir)
	assert.Equal(t, 25, cfg.Storage.MaxConversations)
	assert.Equal(t, 1000, cfg.Watch.DebounceMs)
	assert.Equal(t, "md", cfg.Export.Format)
	// Unspecified fields keep their defaults.
	assert.Equal(t, ".", cfg.Export.OutputDir)
}

func TestLoadFromPath_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[storage\ndir = "), 0644))

	_, err := LoadFromPath(path)
	assert.Error(t, err)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("CONVSTORE_DIR", "/env/dir")
	t.Setenv("CONVSTORE_MAX_CONVERSATIONS", "7")
	t.Setenv("CONVSTORE_EXPORT_FORMAT", "json")
	t.Setenv("CONVSTORE_WATCH_DEBOUNCE_MS", "250")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "/env/dir", cfg.Storage.Dir)
	assert.Equal(t, 7, cfg.Storage.MaxConversations)
	assert.Equal(t, "json", cfg.Export.Format)
	assert.Equal(t, 250, cfg.Watch.DebounceMs)
}

func TestApplyEnvOverrides_IgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("CONVSTORE_MAX_CONVERSATIONS", "lots")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, 0, cfg.Storage.MaxConversations)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Storage.MaxConversations = -1
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Watch.DebounceMs = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Export.Format = "pdf"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Export.Format = "json"
	assert.NoError(t, cfg.Validate())
}
