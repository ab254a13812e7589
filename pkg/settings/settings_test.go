package settings_test

import (
	"testing"
	"time"

	"github.com/aretw0/domrec/pkg/adapters/memory"
	"github.com/aretw0/domrec/pkg/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Defaults(t *testing.T) {
	s, err := settings.Decode(nil)
	require.NoError(t, err)
	assert.Equal(t, settings.Defaults(), s)
	assert.Equal(t, 50*time.Millisecond, s.MinIdle())
}

func TestDecode_Values(t *testing.T) {
	s, err := settings.Decode(map[string]string{
		settings.KeyEventTypes:    "click, keyup,,wheel",
		settings.KeyEnabledGroups: "misc",
		settings.KeyMinIdleTime:   "250",
		settings.KeyAutoplay:      "true",
		settings.KeyLoop:          "yes",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"click", "keyup", "wheel"}, s.EventTypes)
	assert.Equal(t, []string{"misc"}, s.EnabledGroups)
	assert.Equal(t, 250, s.MinIdleTime)
	assert.True(t, s.Autoplay)
	assert.False(t, s.Loop, "only the literal true enables a flag")
}

func TestDecode_EmptyListDisablesAll(t *testing.T) {
	s, err := settings.Decode(map[string]string{settings.KeyEventTypes: ""})
	require.NoError(t, err)
	assert.Empty(t, s.EventTypes)
	assert.Equal(t, settings.Defaults().EnabledGroups, s.EnabledGroups)
}

func TestDecode_InvalidIdleFallsBack(t *testing.T) {
	for _, v := range []string{"", "abc", "-5", "0", "1.5"} {
		s, err := settings.Decode(map[string]string{settings.KeyMinIdleTime: v})
		require.NoError(t, err)
		assert.Equal(t, settings.DefaultMinIdleTime, s.MinIdleTime, "value %q", v)
	}
}

func TestLoadSave_RoundTrip(t *testing.T) {
	store := memory.NewSettings(nil)
	want := settings.Settings{
		EventTypes:    []string{"pointerdown", "pointerup"},
		EnabledGroups: []string{"pointer"},
		MinIdleTime:   80,
		Autoplay:      true,
		Loop:          true,
	}
	require.NoError(t, settings.Save(store, want))

	v, ok, err := store.Get(settings.KeyEventTypes)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "pointerdown,pointerup", v)

	got, err := settings.Load(store)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
