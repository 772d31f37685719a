package cmd

import (
	"fmt"
	"os"

	"Tracklab/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tracklab",
	Short: "Tracklab is a collaborative album production tracker.",
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
