package state

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/launchpad/pkg/core"
)

const fileExt = ".json"

// FileStore keeps one file per key inside a directory.
// Writes go to a temporary file that is renamed over the target, so a
// reader never observes a partial value.
type FileStore struct {
	dir string
}

// NewFileStore opens dir, creating it when needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("state directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory holding the state files.
func (s *FileStore) Dir() string {
	return s.dir
}

// PathFor returns the file backing key.
func (s *FileStore) PathFor(key string) string {
	return filepath.Join(s.dir, key+fileExt)
}

// KeyForPath returns the key stored in path, if path is a state file of s.
func (s *FileStore) KeyForPath(path string) (string, bool) {
	if filepath.Dir(path) != filepath.Clean(s.dir) || filepath.Ext(path) != fileExt {
		return "", false
	}
	key := filepath.Base(path)
	key = key[:len(key)-len(fileExt)]
	if checkKey(key) != nil {
		return "", false
	}
	return key, true
}

// Get reads the file for key.
func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.PathFor(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, core.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	return data, nil
}

// Put atomically replaces the file for key.
func (s *FileStore) Put(_ context.Context, key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.PathFor(key)); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

// Delete removes the file for key.
func (s *FileStore) Delete(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}

	err := os.Remove(s.PathFor(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete state file: %w", err)
	}
	return nil
}

// Close is a no-op.
func (s *FileStore) Close() error {
	return nil
}
