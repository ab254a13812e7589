package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/domrec/internal/adapters/file"
	"github.com/aretw0/domrec/internal/config"
	httpAdapter "github.com/aretw0/domrec/pkg/adapters/http"
	"github.com/aretw0/domrec/pkg/adapters/memory"
	"github.com/aretw0/domrec/pkg/adapters/redis"
	"github.com/aretw0/domrec/pkg/persistence"
	"github.com/aretw0/domrec/pkg/persistence/middleware"
	"github.com/aretw0/domrec/pkg/ports"
)

// Stores bundles the backends selected by configuration.
type Stores struct {
	// Values is the raw key/value store; nil when scripts live on a remote server.
	Values   ports.KeyValueStore
	Actions  ports.ActionStore
	Settings ports.SettingsStore
	// Watcher signals settings changes; nil when the backend cannot watch.
	Watcher ports.Watchable

	closers []func() error
}

// Close releases backend connections.
func (s *Stores) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// OpenStores builds the value, action and settings stores for cfg, wrapping
// them with encryption and key masking when configured.
func OpenStores(cfg *config.Config, logger *slog.Logger) (*Stores, error) {
	s := &Stores{}
	settingsFile := file.NewSettings(cfg.SettingsFile)

	switch cfg.Store {
	case config.StoreMemory:
		s.Values = memory.NewStore()
		s.Settings, s.Watcher = settingsFile, settingsFile
	case config.StoreFile:
		s.Values = file.New(cfg.DataDir)
		s.Settings, s.Watcher = settingsFile, settingsFile
	case config.StoreRedis:
		opts := []redis.Option{redis.WithPrefix(cfg.RedisPrefix)}
		if cfg.RedisTTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.RedisTTL))
		}
		rs := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, opts...)
		s.Values = rs
		s.Settings = redis.NewSettings(rs.Client(), redis.DefaultSettingsKey)
		s.closers = append(s.closers, rs.Close)
	case config.StoreHTTP:
		s.Actions = httpAdapter.NewClient(cfg.Remote,
			httpAdapter.WithClientLogger(logger),
			httpAdapter.WithCompression(cfg.CompressThreshold),
		)
		s.Settings, s.Watcher = settingsFile, settingsFile
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}

	enc, err := cfg.Encryption()
	if err != nil {
		return nil, err
	}
	if enc != nil {
		if s.Values == nil {
			return nil, errors.New("encryption requires a local store backend")
		}
		wrap, err := middleware.NewEncryptionMiddleware(*enc)
		if err != nil {
			return nil, fmt.Errorf("failed to configure encryption: %w", err)
		}
		s.Values = wrap(s.Values)
		logger.Debug("store encryption enabled", "fallback_keys", len(enc.FallbackKeys))
	}

	if s.Actions == nil {
		s.Actions = persistence.NewActionStore(s.Values)
	}
	if len(cfg.MaskPatterns) > 0 {
		mask, err := middleware.NewKeyMaskMiddleware(cfg.MaskPatterns)
		if err != nil {
			return nil, fmt.Errorf("failed to configure masking: %w", err)
		}
		s.Actions = mask(s.Actions)
	}

	logger.Debug("stores opened", "store", cfg.Store)
	return s, nil
}
