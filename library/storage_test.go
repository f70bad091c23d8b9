package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEntity struct {
	ID    string `json:"id"`
	Value int    `json:"value"`
}

func TestStorageLoadMissingFile(t *testing.T) {
	s := NewStorage[testEntity](filepath.Join(t.TempDir(), "missing.json"))

	items, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestStorageLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	items, err := NewStorage[testEntity](path).Load()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestStorageLoadCorruptFileIsReadError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewStorage[testEntity](path).Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageRead)
	assert.NotErrorIs(t, err, ErrStorageWrite)
}

func TestStorageSaveCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "items.json")
	s := NewStorage[testEntity](path)

	require.NoError(t, s.Save([]testEntity{{ID: "a", Value: 1}}))

	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestStorageRoundTrip(t *testing.T) {
	s := NewStorage[testEntity](filepath.Join(t.TempDir(), "items.json"))
	want := []testEntity{{ID: "a", Value: 1}, {ID: "b", Value: 2}}

	require.NoError(t, s.Save(want))
	got, err := s.Load()
	require.NoError(t, err)
	assert.ElementsMatch(t, want, got)
}

func TestStorageSaveNilWritesEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.json")
	require.NoError(t, NewStorage[testEntity](path).Save(nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}
