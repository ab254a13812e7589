package ports

import (
	"context"

	"github.com/aretw0/domrec/pkg/domain"
)

// KeyValueStore persists opaque JSON documents by key.
type KeyValueStore interface {
	// Get returns the value stored under key.
	// Returns domain.ErrKeyNotFound if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys lists the stored keys in no particular order.
	Keys(ctx context.Context) ([]string, error)
}

// ActionStore persists recorded action lists.
type ActionStore interface {
	// Load retrieves the actions saved under key.
	// Returns domain.ErrActionsNotFound if nothing was saved.
	Load(ctx context.Context, key string) ([]domain.Action, error)

	// Save replaces the actions stored under key.
	Save(ctx context.Context, key string, actions []domain.Action) error
}

// SettingsStore holds the recorder's string preferences.
type SettingsStore interface {
	// Get returns the value of key and whether it was set.
	Get(key string) (string, bool, error)

	// Set stores value under key.
	Set(key, value string) error

	// All returns a copy of every stored preference.
	All() (map[string]string, error)
}
