package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/domrec"
	"github.com/aretw0/domrec/internal/config"
	"github.com/aretw0/domrec/internal/presentation/graph"
	"github.com/aretw0/domrec/internal/presentation/tui"
	"github.com/aretw0/domrec/pkg/domain"
)

// InspectOptions controls the inspect output.
type InspectOptions struct {
	// Index shows the details of a single action when non-negative.
	Index int
	// Styled renders through glamour; otherwise plain listing lines.
	Styled bool
	// Mermaid prints a flowchart of the script instead of a listing.
	Mermaid bool
}

// RunInspect prints the script stored under cfg.Key.
func RunInspect(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer, opts InspectOptions) error {
	stores, err := OpenStores(cfg, logger)
	if err != nil {
		return err
	}
	defer stores.Close()

	actions, err := stores.Actions.Load(ctx, cfg.Key)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", cfg.Key, err)
	}

	if opts.Index >= 0 {
		if opts.Index >= len(actions) {
			return fmt.Errorf("%w: %d of %d", domain.ErrIndexOutOfRange, opts.Index, len(actions))
		}
		_, err := fmt.Fprintln(out, domrec.ActionDetails(actions[opts.Index]))
		return err
	}
	if opts.Mermaid {
		_, err := fmt.Fprint(out, graph.GenerateMermaid(actions, nil))
		return err
	}
	return tui.RenderActions(out, cfg.Key, actions, opts.Styled)
}
