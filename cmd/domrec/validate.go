package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/domrec/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [page.html]",
	Short: "Check a stored script for consistency",
	Long: `Reports empty or malformed selector chains, event kinds that cannot be rebuilt, unknown
event types and timestamps going backwards. Given a page, every chain must also resolve on it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var markup io.Reader
		if len(args) > 0 {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open page: %w", err)
			}
			defer f.Close()
			markup = f
		}

		if err := cli.RunValidate(context.Background(), cfg, logger, os.Stdout, markup); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
