package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/domrec/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// DefaultSettingsKey is the hash holding the recorder preferences.
const DefaultSettingsKey = "domrec:settings"

// Settings implements ports.SettingsStore as a Redis hash.
// The port is synchronous, so calls run without a deadline.
type Settings struct {
	client *backend.Client
	key    string
}

// NewSettings creates a settings store on the hash at key.
// An empty key selects DefaultSettingsKey.
func NewSettings(client *backend.Client, key string) *Settings {
	if key == "" {
		key = DefaultSettingsKey
	}
	return &Settings{client: client, key: key}
}

// Get returns the value of field key.
func (s *Settings) Get(key string) (string, bool, error) {
	v, err := s.client.HGet(context.Background(), s.key, key).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read setting: %w", err)
	}
	return v, true, nil
}

// Set stores value under field key.
func (s *Settings) Set(key, value string) error {
	if err := s.client.HSet(context.Background(), s.key, key, value).Err(); err != nil {
		return fmt.Errorf("failed to write setting: %w", err)
	}
	return nil
}

// All returns every field of the hash.
func (s *Settings) All() (map[string]string, error) {
	all, err := s.client.HGetAll(context.Background(), s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	return all, nil
}

var _ ports.SettingsStore = (*Settings)(nil)
