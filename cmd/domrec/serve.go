package main

import (
	"context"
	"os"

	"github.com/aretw0/domrec"
	"github.com/aretw0/domrec/internal/cli"
	"github.com/aretw0/domrec/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the script store HTTP server",
	Long: `Serves the configured store over HTTP: GET/POST/DELETE /store?key=..., GET /keys,
GET /events?key=... (server-sent change notifications), /health, /info and, with --metrics, /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if stdoutIsTerminal() {
			tui.PrintBanner(os.Stdout, domrec.Version)
		}
		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		return cli.RunServe(sigCtx, cfg, logger, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
	serveCmd.Flags().Bool("metrics", false, "Expose Prometheus metrics on /metrics")
}
