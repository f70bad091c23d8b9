package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, filepath.Join("data", "books.json"), cfg.BooksPath())
	assert.Equal(t, filepath.Join("data", "users.json"), cfg.UsersPath())
	assert.Equal(t, filepath.Join("data", "borrowing_records.json"), cfg.RecordsPath())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_dir: /var/lib/library
files:
  books: catalog.json
log:
  level: debug
  format: json
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/library", cfg.DataDir)
	assert.Equal(t, filepath.Join("/var/lib/library", "catalog.json"), cfg.BooksPath())
	// Unset keys keep their defaults.
	assert.Equal(t, filepath.Join("/var/lib/library", "users.json"), cfg.UsersPath())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("LIBRARY_DATA_DIR", "/tmp/library")
	t.Setenv("LIBRARY_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/library", cfg.DataDir)
	assert.Equal(t, "warn", cfg.Log.Level)
}
