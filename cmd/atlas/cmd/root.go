package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"appatlas/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "atlas",
	Short: "Build and inspect application knowledge bases",
	Long: `atlas turns extracted application packages into a queryable knowledge
base: it resolves opaque identifiers to readable names, computes the
dependency graph, groups objects into activity bundles, and writes the
artifact layout served by atlas-mcp.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
