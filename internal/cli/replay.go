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
	"github.com/aretw0/domrec/pkg/dom"
	"github.com/aretw0/domrec/pkg/replay"
)

// ReplayOptions controls a headless replay.
type ReplayOptions struct {
	// Markup is the page the script is replayed against.
	Markup io.Reader
	// Timed honours the recorded gaps; otherwise actions are dispatched back to back.
	Timed bool
	// Colored colours the report rows.
	Colored bool
	// Mermaid prints a flowchart with the outcome overlaid instead of report rows.
	Mermaid bool
}

// RunReplay loads the script stored under cfg.Key and replays it against the
// given page, looping while the loop preference is set. Preference edits are
// picked up while it runs; interrupting ctx stops the replay.
func RunReplay(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer, opts ReplayOptions) error {
	stores, err := OpenStores(cfg, logger)
	if err != nil {
		return err
	}
	defer stores.Close()

	win, err := dom.ParseHTML(opts.Markup)
	if err != nil {
		return fmt.Errorf("invalid markup: %w", err)
	}

	var pacer replay.Pacer = replay.InstantPacer{}
	if opts.Timed {
		pacer = replay.NewFramePacer()
	}
	rec, err := domrec.New(win,
		domrec.WithStore(stores.Actions),
		domrec.WithSettingsStore(stores.Settings),
		domrec.WithKey(cfg.Key),
		domrec.WithLogger(logger),
		domrec.WithPacer(pacer),
		domrec.WithOnStatus(func(status string) { logger.Debug("status", "status", status) }),
	)
	if err != nil {
		return err
	}
	defer rec.Close()

	if err := rec.GetActions(ctx); err != nil {
		return err
	}
	if stores.Watcher != nil {
		if err := rec.WatchSettings(ctx, stores.Watcher); err != nil {
			logger.Warn("settings watcher disabled", "err", err)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		rec.StopReplaying()
	}()

	err = rec.StartReplaying(ctx)
	report := rec.LastReport()
	if opts.Mermaid {
		fmt.Fprint(out, graph.GenerateMermaid(rec.Actions(), &graph.ReplayOverlay{
			Replayed:       report.Replayed,
			SkippedIndexes: report.SkippedIndexes,
		}))
	} else {
		tui.PrintReport(out, rec.Actions(), report, opts.Colored)
	}
	return handleExecutionError(err)
}
