package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/domrec/pkg/domain"
	"github.com/aretw0/domrec/pkg/ports"
)

// ActionStore implements ports.ActionStore on top of a ports.KeyValueStore.
type ActionStore struct {
	kv ports.KeyValueStore
}

// NewActionStore creates an ActionStore backed by kv.
func NewActionStore(kv ports.KeyValueStore) *ActionStore {
	return &ActionStore{kv: kv}
}

// Load decodes the JSON array stored under key.
func (s *ActionStore) Load(ctx context.Context, key string) ([]domain.Action, error) {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrActionsNotFound, key)
		}
		return nil, err
	}
	return DecodeActions(raw)
}

// Save encodes actions as a JSON array under key.
func (s *ActionStore) Save(ctx context.Context, key string, actions []domain.Action) error {
	raw, err := EncodeActions(actions)
	if err != nil {
		return err
	}
	return s.kv.Put(ctx, key, raw)
}

// DecodeActions parses a stored action list.
func DecodeActions(raw []byte) ([]domain.Action, error) {
	actions := []domain.Action{}
	if err := json.Unmarshal(raw, &actions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal actions: %w", err)
	}
	return actions, nil
}

// EncodeActions renders actions in the wire format. A nil list encodes as [].
func EncodeActions(actions []domain.Action) ([]byte, error) {
	if actions == nil {
		actions = []domain.Action{}
	}
	raw, err := json.Marshal(actions)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal actions: %w", err)
	}
	return raw, nil
}

var _ ports.ActionStore = (*ActionStore)(nil)
