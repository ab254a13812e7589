package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aretw0/domrec/pkg/domain"
	"github.com/aretw0/domrec/pkg/ports"
)

var validKey = regexp.MustCompile(`^[A-Za-z0-9_-][A-Za-z0-9._-]*$`)

// Store implements ports.KeyValueStore using the local filesystem.
// It stores each value as a JSON file in a configured directory.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".domrec/store".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".domrec", "store")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(key string) (string, error) {
	if !validKey.MatchString(key) {
		return "", fmt.Errorf("invalid store key %q", key)
	}
	return filepath.Join(s.BasePath, key+".json"), nil
}

// Put persists the value atomically.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	destPath, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure store directory: %w", err)
	}
	return writeAtomic(destPath, value)
}

// Get reads the value file.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	filePath, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}
	return data, nil
}

// Delete removes the value file.
func (s *Store) Delete(ctx context.Context, key string) error {
	filePath, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete store file: %w", err)
	}
	return nil
}

// Keys lists the stored keys.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list store: %w", err)
	}

	keys := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || strings.HasPrefix(name, "tmp-") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".json"))
	}
	return keys, nil
}

// writeAtomic writes to a temporary file, syncs via fsync, and then renames
// it to the destination.
func writeAtomic(destPath string, data []byte) error {
	dir := filepath.Dir(destPath)
	// Same directory, so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(dir, "tmp-"+filepath.Base(destPath)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

var _ ports.KeyValueStore = (*Store)(nil)
