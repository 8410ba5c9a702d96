package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/daechang/placetalk/internal/client"
)

var roomsServerURL string

var roomsCmd = &cobra.Command{
	Use:   "rooms [chatid]",
	Short: "List chatrooms on a running server",
	Long:  "Queries the chatrooms endpoint and prints each room with its message count. An optional chatid argument narrows the listing to one room.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		chatID := ""
		if len(args) == 1 {
			chatID = args[0]
		}

		c, err := client.New(roomsServerURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		rooms, err := c.Chatrooms(cmd.Context(), chatID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if len(rooms) == 0 {
			fmt.Println("No chatrooms found.")
			return
		}
		for _, room := range rooms {
			fmt.Printf("%s  messages=%d", room.ChatID, len(room.Messages))
			if room.RoadAddress != "" || room.JibunAddress != "" {
				fmt.Printf("  [%s %s]", room.RoadAddress, room.JibunAddress)
			}
			fmt.Println()
		}
	},
}

func init() {
	roomsCmd.Flags().StringVar(&roomsServerURL, "server", "http://localhost:4000", "Base URL of the placetalk server")
	rootCmd.AddCommand(roomsCmd)
}
