package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "placetalk",
	Short: "placetalk CLI tool",
	Long: `placetalk is the command-line interface for the placetalk chat server.

Available commands:
  serve     Run the chat server
  rooms     List chatrooms on a running server

Use "placetalk [command] --help" for more information about a specific command.`,
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
