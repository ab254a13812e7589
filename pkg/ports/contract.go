package ports

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aretw0/domrec/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractKey(name string) string {
	return "contract-" + name + "-" + time.Now().Format("20060102150405.000000000")
}

// RunKeyValueStoreContract runs a suite of tests to verify that a KeyValueStore
// implementation adheres to the defined interface contract.
func RunKeyValueStoreContract(t *testing.T, store KeyValueStore) {
	ctx := context.Background()
	key := contractKey("kv")

	t.Run("Put and Get", func(t *testing.T) {
		value := []byte(`{"hello":"world"}`)
		require.NoError(t, store.Put(ctx, key, value))

		got, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.JSONEq(t, string(value), string(got))
	})

	t.Run("Put replaces", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, key, []byte(`[1]`)))
		require.NoError(t, store.Put(ctx, key, []byte(`[2]`)))

		got, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.JSONEq(t, `[2]`, string(got))
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.Get(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, domain.ErrKeyNotFound)
	})

	t.Run("Keys", func(t *testing.T) {
		other := key + "-other"
		require.NoError(t, store.Put(ctx, other, []byte(`{}`)))
		defer func() { _ = store.Delete(ctx, other) }()

		keys, err := store.Keys(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, key)
		assert.Contains(t, keys, other)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, key))
		_, err := store.Get(ctx, key)
		assert.ErrorIs(t, err, domain.ErrKeyNotFound, "Get after Delete should return ErrKeyNotFound")

		assert.NoError(t, store.Delete(ctx, key), "deleting twice is not an error")
	})
}

// RunActionStoreContract runs a suite of tests to verify that an ActionStore
// implementation adheres to the defined interface contract.
func RunActionStoreContract(t *testing.T, store ActionStore) {
	ctx := context.Background()
	key := contractKey("actions")

	actions := []domain.Action{
		{
			Selectors: []string{"html > body:nth-child(2) > x-app", "button:nth-child(2)"},
			Event: domain.SavedEvent{
				Kind: domain.KindPointer, Capture: domain.Bool(true), Type: "pointerdown",
				PointerID: 1, Buttons: 1, PageX: 12.5, PageY: 40, TimeStamp: 1032.7,
				Bubbles: true, Composed: true, Cancelable: true,
			},
		},
		{
			Selectors: []string{domain.WindowSelector},
			Event: domain.SavedEvent{
				Kind: domain.KindKeyboard, Type: "keydown", Key: "a", Which: 65, TimeStamp: 1200,
				Bubbles: true, Composed: true, Cancelable: true,
			},
		},
	}

	t.Run("Save and Load", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, actions), "Save should not return error")

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, actions, loaded)
	})

	t.Run("Save replaces", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, actions[:1]))

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Len(t, loaded, 1)
	})

	t.Run("Save empty", func(t *testing.T) {
		empty := key + "-empty"
		require.NoError(t, store.Save(ctx, empty, []domain.Action{}))

		loaded, err := store.Load(ctx, empty)
		require.NoError(t, err)
		assert.Empty(t, loaded)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, domain.ErrActionsNotFound)
	})

	t.Run("Wire format", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, actions))
		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)

		raw, err := json.Marshal(loaded[0])
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"selectors"`)
		assert.Contains(t, string(raw), `"is":"PointerEvent"`)
		assert.Contains(t, string(raw), `"capture":true`)
	})
}

// RunSettingsStoreContract runs a suite of tests to verify that a SettingsStore
// implementation adheres to the defined interface contract.
func RunSettingsStoreContract(t *testing.T, store SettingsStore) {
	t.Run("Get unset", func(t *testing.T) {
		_, ok, err := store.Get("contract-unset")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Set and Get", func(t *testing.T) {
		require.NoError(t, store.Set("recorderLoop", "true"))

		v, ok, err := store.Get("recorderLoop")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "true", v)
	})

	t.Run("Empty value is set", func(t *testing.T) {
		require.NoError(t, store.Set("recorderEventTypes", ""))

		v, ok, err := store.Get("recorderEventTypes")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "", v)
	})

	t.Run("All", func(t *testing.T) {
		require.NoError(t, store.Set("recorderMinIdleTime", "120"))

		all, err := store.All()
		require.NoError(t, err)
		assert.Equal(t, "120", all["recorderMinIdleTime"])
		assert.Equal(t, "true", all["recorderLoop"])

		all["recorderMinIdleTime"] = "mutated"
		v, _, err := store.Get("recorderMinIdleTime")
		require.NoError(t, err)
		assert.Equal(t, "120", v, "All returns a copy")
	})
}
