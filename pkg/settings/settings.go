// Package settings decodes the recorder's persisted preferences.
//
// Preferences are stored as plain strings under the same keys the browser
// recorder keeps in local storage, so an exported settings map can be loaded
// unchanged.
package settings

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/domrec/pkg/ports"
	"github.com/mitchellh/mapstructure"
)

// Preference keys.
const (
	KeyEventTypes    = "recorderEventTypes"
	KeyEnabledGroups = "recorderEnabledGroups"
	KeyMinIdleTime   = "recorderMinIdleTime"
	KeyAutoplay      = "recorderAutoplay"
	KeyLoop          = "recorderLoop"
)

// DefaultMinIdleTime is the idle threshold in milliseconds.
const DefaultMinIdleTime = 50

// Settings are the decoded recorder preferences.
type Settings struct {
	EventTypes    []string `mapstructure:"recorderEventTypes"`
	EnabledGroups []string `mapstructure:"recorderEnabledGroups"`
	MinIdleTime   int      `mapstructure:"recorderMinIdleTime"`
	Autoplay      bool     `mapstructure:"recorderAutoplay"`
	Loop          bool     `mapstructure:"recorderLoop"`
}

// Defaults returns the preferences of a fresh install.
func Defaults() Settings {
	return Settings{
		EventTypes:    []string{"click", "pointermove", "keydown"},
		EnabledGroups: []string{"misc", "pointer", "keyboard"},
		MinIdleTime:   DefaultMinIdleTime,
	}
}

// MinIdle returns the idle threshold as a duration.
func (s Settings) MinIdle() time.Duration {
	return time.Duration(s.MinIdleTime) * time.Millisecond
}

// Decode builds Settings from raw preference strings. Missing keys keep their
// defaults; booleans are true only for "true", and an idle time that is not a
// positive integer falls back to DefaultMinIdleTime.
func Decode(raw map[string]string) (Settings, error) {
	input := make(map[string]any, len(raw))
	for k, v := range raw {
		switch k {
		case KeyAutoplay, KeyLoop:
			input[k] = v == "true"
		case KeyMinIdleTime:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
				input[k] = n
			}
		case KeyEventTypes, KeyEnabledGroups:
			input[k] = v
		}
	}

	out := Defaults()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
		WeaklyTypedInput: true,
		ZeroFields:       true,
		Result:           &out,
	})
	if err != nil {
		return Settings{}, fmt.Errorf("failed to build settings decoder: %w", err)
	}
	if err := dec.Decode(input); err != nil {
		return Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	out.EventTypes = compact(out.EventTypes)
	out.EnabledGroups = compact(out.EnabledGroups)
	return out, nil
}

// Encode renders s as raw preference strings.
func Encode(s Settings) map[string]string {
	return map[string]string{
		KeyEventTypes:    strings.Join(s.EventTypes, ","),
		KeyEnabledGroups: strings.Join(s.EnabledGroups, ","),
		KeyMinIdleTime:   strconv.Itoa(s.MinIdleTime),
		KeyAutoplay:      strconv.FormatBool(s.Autoplay),
		KeyLoop:          strconv.FormatBool(s.Loop),
	}
}

// Load reads and decodes every preference from store.
func Load(store ports.SettingsStore) (Settings, error) {
	raw, err := store.All()
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}
	return Decode(raw)
}

// Save writes every preference of s to store.
func Save(store ports.SettingsStore, s Settings) error {
	for k, v := range Encode(s) {
		if err := store.Set(k, v); err != nil {
			return fmt.Errorf("failed to write setting %s: %w", k, err)
		}
	}
	return nil
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
