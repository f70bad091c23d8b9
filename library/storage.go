package library

import (
	"fmt"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Storage persists one whole entity collection as a single JSON
// document: a pretty-printed array of objects. Every save rewrites the
// file in full; there is no write-ahead log, so a crash mid-write can
// leave a corrupt file behind.
type Storage[T any] struct {
	path string
}

// NewStorage binds a storage to its backing file. The file need not
// exist yet.
func NewStorage[T any](path string) *Storage[T] {
	return &Storage[T]{path: path}
}

// Path returns the backing file path.
func (s *Storage[T]) Path() string { return s.path }

// Load reads the whole document. A missing or empty file yields an
// empty collection; a file that exists but cannot be read or parsed is
// a read error, reported distinctly so corruption is never silently
// swallowed.
func (s *Storage[T]) Load() ([]T, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrStorageRead, s.path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrStorageRead, s.path, err)
	}
	return items, nil
}

// Save serializes the collection and overwrites the backing file,
// creating parent directories on first run.
func (s *Storage[T]) Save(items []T) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: create dir for %s: %v", ErrStorageWrite, s.path, err)
		}
	}
	if items == nil {
		items = []T{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrStorageWrite, s.path, err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrStorageWrite, s.path, err)
	}
	return nil
}
