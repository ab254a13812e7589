package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/domrec/internal/cli"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay <page.html>",
	Short: "Replay a stored script against an HTML page",
	Long: `Parses the page (use "-" for stdin), replays the stored script against it and reports
which actions reached their targets. The loop preference repeats the replay until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		timed, _ := cmd.Flags().GetBool("timed")
		noColor, _ := cmd.Flags().GetBool("no-color")
		mermaid, _ := cmd.Flags().GetBool("mermaid")

		var markup io.Reader = os.Stdin
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open page: %w", err)
			}
			defer f.Close()
			markup = f
		}

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		return cli.RunReplay(sigCtx, cfg, logger, os.Stdout, cli.ReplayOptions{
			Markup:  markup,
			Timed:   timed,
			Colored: !noColor && stdoutIsTerminal(),
			Mermaid: mermaid,
		})
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().Bool("timed", false, "Honour the recorded gaps between actions")
	replayCmd.Flags().Bool("no-color", false, "Disable coloured output")
	replayCmd.Flags().Bool("mermaid", false, "Print a Mermaid flowchart with the outcome overlaid")
}
