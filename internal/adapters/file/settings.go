package file

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"github.com/aretw0/domrec/pkg/ports"
	"gopkg.in/yaml.v3"
)

// Settings implements ports.SettingsStore as a flat YAML file.
// The file is re-read on every call so external edits are picked up.
type Settings struct {
	Path string
	mu   sync.Mutex
}

// NewSettings creates a settings store at path.
// If path is empty, it defaults to ".domrec/settings.yaml".
func NewSettings(path string) *Settings {
	if path == "" {
		path = filepath.Join(".domrec", "settings.yaml")
	}
	return &Settings{Path: path}
}

func (s *Settings) read() (map[string]string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}
	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}
	return values, nil
}

// Get returns the value of key.
func (s *Settings) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.read()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

// Set rewrites the file with key updated.
func (s *Settings) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.read()
	if err != nil {
		return err
	}
	values[key] = value

	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return fmt.Errorf("failed to ensure settings directory: %w", err)
	}
	return writeAtomic(s.Path, data)
}

// All returns every preference in the file.
func (s *Settings) All() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.read()
	if err != nil {
		return nil, err
	}
	return maps.Clone(values), nil
}

var _ ports.SettingsStore = (*Settings)(nil)
