// Package config loads CLI and server configuration from flags, the
// environment (DOMREC_*) and an optional domrec.yaml using Viper.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aretw0/domrec/internal/logging"
	"github.com/aretw0/domrec/pkg/domain"
	"github.com/aretw0/domrec/pkg/persistence/middleware"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. DOMREC_REDIS_ADDR.
const EnvPrefix = "DOMREC"

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreHTTP   = "http"
)

// Config holds the CLI and server configuration.
type Config struct {
	// Addr is the address the store server listens on.
	Addr string `mapstructure:"addr"`
	// Store selects the backend: memory, file, redis or http.
	Store string `mapstructure:"store"`
	// Remote is the base URL of a store server; used when Store is http.
	Remote string `mapstructure:"remote"`
	// DataDir holds the file backend's values.
	DataDir string `mapstructure:"data_dir"`
	// SettingsFile is the YAML file recorder preferences are read from.
	SettingsFile string `mapstructure:"settings_file"`
	// Key is the store key scripts are read from and saved under.
	Key string `mapstructure:"key"`

	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	RedisPrefix   string        `mapstructure:"redis_prefix"`
	RedisTTL      time.Duration `mapstructure:"redis_ttl"`

	LogLevel string `mapstructure:"log_level"`
	LogJSON  bool   `mapstructure:"log_json"`
	Metrics  bool   `mapstructure:"metrics"`

	// EncryptionKey is a base64 AES-256 key; values are stored encrypted when set.
	EncryptionKey string `mapstructure:"encryption_key"`
	// FallbackKeys are base64 keys still accepted for decryption.
	FallbackKeys []string `mapstructure:"fallback_keys"`
	// MaskPatterns are regular expressions; keyboard actions whose selector
	// chain matches have their key masked before saving.
	MaskPatterns []string `mapstructure:"mask_patterns"`
	// CompressThreshold gzips request bodies to a remote store above this
	// many bytes; zero disables compression.
	CompressThreshold int `mapstructure:"compress_threshold"`
}

// Load builds Config from defaults, the config file, the environment and the
// flags of fs, in increasing precedence. A flag named "data-dir" binds the
// key "data_dir". A missing config file is ignored unless path names one.
func Load(fs *pflag.FlagSet, path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("addr", ":8080")
	v.SetDefault("store", StoreFile)
	v.SetDefault("remote", "http://localhost:8080")
	v.SetDefault("data_dir", ".domrec/store")
	v.SetDefault("settings_file", ".domrec/settings.yaml")
	v.SetDefault("key", domain.ActionsKey)
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_prefix", "domrec:store:")
	v.SetDefault("log_level", "info")
	v.SetDefault("compress_threshold", 0)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
		}
	} else {
		v.SetConfigName("domrec")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: %w", err)
			}
		}
	}

	if fs != nil {
		var bindErr error
		fs.VisitAll(func(f *pflag.Flag) {
			if bindErr == nil {
				bindErr = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
			}
		})
		if bindErr != nil {
			return nil, fmt.Errorf("config: %w", bindErr)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the backend selection and its required settings.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreFile:
	case StoreRedis:
		if c.RedisAddr == "" {
			return errors.New("config: redis_addr must be set for the redis store")
		}
	case StoreHTTP:
		if c.Remote == "" {
			return errors.New("config: remote must be set for the http store")
		}
	default:
		return fmt.Errorf("config: unknown store %q (memory, file, redis, http)", c.Store)
	}
	if c.Key == "" {
		return errors.New("config: key must not be empty")
	}
	return nil
}

// Logger builds the application logger for the configured level. It writes
// to stderr so stdout stays free for reports and MCP traffic.
func (c *Config) Logger() *slog.Logger {
	return logging.NewWithWriter(os.Stderr, logging.ParseLevel(c.LogLevel), c.LogJSON)
}

// Encryption decodes the configured keys. It returns nil when encryption is off.
func (c *Config) Encryption() (*middleware.EncryptionConfig, error) {
	if c.EncryptionKey == "" {
		return nil, nil
	}
	active, err := decodeKey(c.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("config: encryption_key: %w", err)
	}
	enc := &middleware.EncryptionConfig{ActiveKey: active}
	for i, k := range c.FallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, fmt.Errorf("config: fallback_keys[%d]: %w", i, err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, key)
	}
	return enc, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("want 32 bytes, got %d", len(key))
	}
	return key, nil
}
