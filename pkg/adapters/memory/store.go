package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/domrec/pkg/domain"
	"github.com/aretw0/domrec/pkg/ports"
)

// Store implements ports.KeyValueStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string][]byte
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string][]byte),
	}
}

// Get retrieves a copy of the value, so callers can't mutate the store's bytes.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data[key]
	if !ok {
		return nil, domain.ErrKeyNotFound
	}
	return slices.Clone(value), nil
}

// Put stores a copy of value.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	copied := slices.Clone(value)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = copied
	return nil
}

// Delete removes the key.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Keys returns the stored keys.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}

var _ ports.KeyValueStore = (*Store)(nil)
