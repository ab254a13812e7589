package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aretw0/domrec"
	"github.com/aretw0/domrec/pkg/domain"
	"github.com/aretw0/domrec/pkg/replay"
	"github.com/muesli/termenv"
)

// ActionsMarkdown renders a script as a markdown table.
func ActionsMarkdown(key string, actions []domain.Action) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", key)
	if len(actions) == 0 {
		b.WriteString("_no actions_\n")
		return b.String()
	}
	fmt.Fprintf(&b, "%d actions\n\n", len(actions))
	b.WriteString("| # | ms | type | target | selectors |\n")
	b.WriteString("|---|---|---|---|---|\n")
	first := int64(actions[0].Event.TimeStamp)
	for i, a := range actions {
		fmt.Fprintf(&b, "| %d | %d | %s | `%s` | %d |\n",
			i, int64(a.Event.TimeStamp)-first, a.Event.Type, escape(a.LastSegment()), len(a.Selectors))
	}
	return b.String()
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// RenderActions writes the script to w: through glamour when styled is set,
// otherwise as plain listing lines.
func RenderActions(w io.Writer, key string, actions []domain.Action, styled bool) error {
	if !styled {
		for _, line := range domrec.ActionLines(actions) {
			fmt.Fprintln(w, line)
		}
		return nil
	}
	out, err := NewRenderer()(ActionsMarkdown(key, actions))
	if err != nil {
		return fmt.Errorf("failed to render actions: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

// PrintReport writes one line per action of a replay pass, followed by a
// summary. Skipped rows are red and dispatched rows green when colored is set.
func PrintReport(w io.Writer, actions []domain.Action, report replay.Report, colored bool) {
	profile := termenv.Ascii
	if colored {
		profile = termenv.ColorProfile()
	}
	skipped := make(map[int]bool, len(report.SkippedIndexes))
	for _, i := range report.SkippedIndexes {
		skipped[i] = true
	}

	for i, line := range domrec.ActionLines(actions) {
		mark, color := "ok  ", "#4ade80"
		if skipped[i] {
			mark, color = "skip", "#f87171"
		} else if i >= report.Replayed+report.Skipped {
			mark, color = "--  ", "#9ca3af"
		}
		fmt.Fprintln(w, profile.String(fmt.Sprintf("%s %3d %s", mark, i, line)).Foreground(profile.Color(color)))
	}

	summary := fmt.Sprintf("%d replayed, %d skipped, %d total in %s",
		report.Replayed, report.Skipped, len(actions), report.Duration.Round(time.Millisecond))
	if report.Aborted {
		summary += " (aborted)"
	}
	fmt.Fprintln(w, profile.String(summary).Bold())
}
