package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the domrec banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"      _                                ", "#38bdf8"},
		{"   __| | ___  _ __ ___  _ __ ___  ___ ", "#22d3ee"},
		{"  / _` |/ _ \\| '_ ` _ \\| '__/ _ \\/ __|", "#2dd4bf"},
		{" | (_| | (_) | | | | | | | |  __/ (__ ", "#34d399"},
		{"  \\__,_|\\___/|_| |_| |_|_|  \\___|\\___|", "#4ade80"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  v"+strings.TrimSpace(version)).Faint())
	fmt.Fprintln(w)
}
