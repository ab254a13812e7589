package file

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/domrec/internal/logging"
	"github.com/aretw0/domrec/pkg/ports"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 100 * time.Millisecond

// WatchOption configures a Watch.
type WatchOption func(*watchConfig)

type watchConfig struct {
	debounce time.Duration
	logger   *slog.Logger
}

// WithDebounce sets the quiet period before a change is signaled.
func WithDebounce(d time.Duration) WatchOption {
	return func(c *watchConfig) {
		c.debounce = d
	}
}

// WithWatchLogger configures a logger for watcher errors.
func WithWatchLogger(logger *slog.Logger) WatchOption {
	return func(c *watchConfig) {
		c.logger = logger
	}
}

// Watch signals when the settings file changes. It watches the parent
// directory, since editors often replace files by rename.
func (s *Settings) Watch(ctx context.Context) (<-chan struct{}, error) {
	return s.WatchWith(ctx)
}

// WatchWith is Watch with options.
func (s *Settings) WatchWith(ctx context.Context, opts ...WatchOption) (<-chan struct{}, error) {
	cfg := watchConfig{debounce: DefaultDebounce, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	dir := filepath.Dir(s.Path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch path %s: %w", dir, err)
	}

	out := make(chan struct{}, 1)
	name := filepath.Base(s.Path)

	var (
		mu     sync.Mutex
		timer  *time.Timer
		closed bool
	)
	signal := func() {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case out <- struct{}{}:
		default:
		}
	}

	go func() {
		defer func() {
			_ = watcher.Close()
			mu.Lock()
			closed = true
			if timer != nil {
				timer.Stop()
			}
			close(out)
			mu.Unlock()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != name || ev.Op == fsnotify.Chmod {
					continue
				}
				mu.Lock()
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(cfg.debounce, signal)
				mu.Unlock()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				// Log error but continue watching
				cfg.logger.Warn("settings watcher error", "err", err)
			}
		}
	}()
	return out, nil
}

var _ ports.Watchable = (*Settings)(nil)
