package cart

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store persists the full cart state. Save receives the complete entry list
// on every mutation; Load returns the last saved state, or nil when none
// exists yet.
type Store interface {
	Save(entries []Entry) error
	Load() ([]Entry, error)
}

// FileStore is a JSON-file-backed Store. Writes go through a temp file and
// rename so a crash mid-save never leaves a truncated cart behind.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore persisting to the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Save writes the entries as JSON, atomically replacing the previous state.
func (s *FileStore) Save(entries []Entry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling cart: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating cart dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".cart-*")
	if err != nil {
		return fmt.Errorf("creating cart temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cart: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing cart temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing cart file: %w", err)
	}
	return nil
}

// Load reads the last saved entries. A missing file is an empty cart.
func (s *FileStore) Load() ([]Entry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading cart file: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("unmarshaling cart: %w", err)
	}
	return entries, nil
}
