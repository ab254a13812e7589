package main

import (
	"context"
	"os"

	"github.com/aretw0/domrec/internal/cli"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "List the actions of a stored script",
	RunE: func(cmd *cobra.Command, args []string) error {
		index, _ := cmd.Flags().GetInt("index")
		plain, _ := cmd.Flags().GetBool("plain")
		mermaid, _ := cmd.Flags().GetBool("mermaid")

		return cli.RunInspect(context.Background(), cfg, logger, os.Stdout, cli.InspectOptions{
			Index:   index,
			Styled:  !plain && stdoutIsTerminal(),
			Mermaid: mermaid,
		})
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().IntP("index", "i", -1, "Show the details of one action")
	inspectCmd.Flags().Bool("plain", false, "Plain listing even on a terminal")
	inspectCmd.Flags().Bool("mermaid", false, "Print a Mermaid flowchart of the script")
}
