package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/domrec"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of domrec",
	// version needs no configuration
	PersistentPreRun: func(cmd *cobra.Command, args []string) {},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("domrec version %s\n", strings.TrimSpace(domrec.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
