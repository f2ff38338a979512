package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pipeview",
	Short: "pipeview renders live delivery pipelines",
	Long: `pipeview keeps a live view of a project's warehouses, stages and promotions,
lays the pipeline out as a graph and serves it over HTTP or prints it.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("project", "", "Project to view (defaults to the first fixture's project)")
	rootCmd.PersistentFlags().String("fixtures", "", "YAML fixture file or directory to seed the in-memory source")
	rootCmd.PersistentFlags().String("redis-addr", "", "Redis address for persisted settings (in-memory when empty)")
	rootCmd.PersistentFlags().String("redis-password", "", "Redis password")
	rootCmd.PersistentFlags().Int("redis-db", 0, "Redis database")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
}
