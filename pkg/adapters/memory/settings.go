package memory

import (
	"maps"
	"sync"

	"github.com/aretw0/domrec/pkg/ports"
)

// Settings implements ports.SettingsStore in memory.
// Safe for concurrent use.
type Settings struct {
	values map[string]string
	mu     sync.RWMutex
}

// NewSettings creates a settings store seeded with initial.
func NewSettings(initial map[string]string) *Settings {
	values := make(map[string]string, len(initial))
	maps.Copy(values, initial)
	return &Settings{values: values}
}

// Get returns the value of key.
func (s *Settings) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Set stores value under key.
func (s *Settings) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// All returns a copy of every preference.
func (s *Settings) All() (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.values), nil
}

var _ ports.SettingsStore = (*Settings)(nil)
