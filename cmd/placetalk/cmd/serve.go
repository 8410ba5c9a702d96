package cmd

import (
	"github.com/spf13/cobra"

	"github.com/daechang/placetalk/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chat server",
	Long:  "Starts the HTTP API, the realtime subscription endpoint, and the marker expiry sweeper.",
	Run: func(cmd *cobra.Command, args []string) {
		s := server.New()
		s.Start()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
