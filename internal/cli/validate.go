package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/domrec/internal/config"
	"github.com/aretw0/domrec/internal/validator"
	"github.com/aretw0/domrec/pkg/dom"
)

// RunValidate checks the script stored under cfg.Key. When markup is set the
// selector chains must also resolve on that page.
func RunValidate(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer, markup io.Reader) error {
	stores, err := OpenStores(cfg, logger)
	if err != nil {
		return err
	}
	defer stores.Close()

	actions, err := stores.Actions.Load(ctx, cfg.Key)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", cfg.Key, err)
	}

	var opts []validator.Option
	if markup != nil {
		win, err := dom.ParseHTML(markup)
		if err != nil {
			return fmt.Errorf("invalid markup: %w", err)
		}
		opts = append(opts, validator.WithWindow(win))
	}

	if err := validator.ValidateScript(actions, opts...); err != nil {
		return err
	}
	printSystemMessage(out, "%s is valid (%d actions)", cfg.Key, len(actions))
	return nil
}
