package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/domrec/internal/config"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "domrec",
	Short: "Record and replay page interactions",
	Long: `domrec stores scripts of recorded page interactions and replays them with their original timing.

Configuration is read from flags, DOMREC_* environment variables and an optional domrec.yaml.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(cmd.Flags(), path)
		if err != nil {
			return err
		}
		cfg = loaded
		logger = cfg.Logger()
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// stdoutIsTerminal reports whether styled output can be used.
func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func init() {
	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default: ./domrec.yaml when present)")
	flags.String("store", config.StoreFile, "Store backend: memory, file, redis or http")
	flags.String("data-dir", ".domrec/store", "Directory of the file store")
	flags.String("settings-file", ".domrec/settings.yaml", "Recorder preferences file")
	flags.String("key", "recorder-actions", "Store key of the script")
	flags.String("remote", "http://localhost:8080", "Base URL of a store server (http store)")
	flags.String("redis-addr", "localhost:6379", "Redis address (redis store)")
	flags.String("redis-prefix", "domrec:store:", "Redis key prefix (redis store)")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.Bool("log-json", false, "Log as JSON")
}
