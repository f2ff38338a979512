package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/pipeview"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of pipeview",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pipeview version %s\n", pipeview.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
