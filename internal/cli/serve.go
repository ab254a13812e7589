package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/domrec/internal/config"
	httpAdapter "github.com/aretw0/domrec/pkg/adapters/http"
	"github.com/aretw0/domrec/pkg/observability"
	"github.com/aretw0/domrec/pkg/settings"
)

// shutdownTimeout bounds the graceful shutdown of the store server.
const shutdownTimeout = 5 * time.Second

// RunServe serves the configured store over HTTP until ctx ends.
func RunServe(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	stores, err := OpenStores(cfg, logger)
	if err != nil {
		return err
	}
	defer stores.Close()
	if stores.Values == nil {
		return errors.New("serve needs a local store backend (memory, file or redis)")
	}

	opts := []httpAdapter.Option{httpAdapter.WithLogger(logger)}
	if cfg.Metrics {
		opts = append(opts, httpAdapter.WithMetrics(observability.NewMetrics()))
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpAdapter.NewHandler(stores.Values, opts...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if stores.Watcher != nil {
		if err := watchSettings(ctx, stores, logger); err != nil {
			logger.Warn("settings watcher disabled", "err", err)
		}
	}

	serverErrors := make(chan error, 1)
	go func() {
		printSystemMessage(out, "Serving %s store on %s", cfg.Store, cfg.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			return srv.Close()
		}
		printSystemMessage(out, "Store server stopped gracefully")
		return nil
	}
}

// watchSettings logs every valid change of the preference file, so a bad edit
// is reported while the server keeps running.
func watchSettings(ctx context.Context, stores *Stores, logger *slog.Logger) error {
	ch, err := stores.Watcher.Watch(ctx)
	if err != nil {
		return err
	}
	go func() {
		for range ch {
			prefs, err := settings.Load(stores.Settings)
			if err != nil {
				logger.Warn("invalid settings", "err", err)
				continue
			}
			logger.Info("settings changed",
				"event_types", prefs.EventTypes,
				"groups", prefs.EnabledGroups,
				"autoplay", prefs.Autoplay,
				"loop", prefs.Loop,
			)
		}
	}()
	return nil
}
