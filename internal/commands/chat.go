package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mfdist/internal/chat"
)

func newChatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "chat <text>",
		Short: "Print the assistant's reply to a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), chat.Reply(strings.Join(args, " ")))
			return nil
		},
	}
}
