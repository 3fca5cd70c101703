package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evcraddock/suggestion-board/internal/contact"
)

func newContactCmd() *cobra.Command {
	return &cobra.Command{
		Use:   `contact <name> <contact> "message"`,
		Short: "Send a message to the board's moderators",
		Long:  "Send a private message to the moderators' Telegram chats. <contact> is how they can reach you back, such as a phone number or a Telegram handle.",
		Args:  cobra.MinimumNArgs(3),
		RunE:  runContact,
	}
}

func runContact(cmd *cobra.Command, args []string) error {
	m := contact.Message{
		Name:    args[0],
		ReplyTo: args[1],
		Message: strings.Join(args[2:], " "),
	}
	m, problem := m.Normalize()
	if problem != "" {
		return fmt.Errorf("%s", problem)
	}

	if err := newAPIClient().SendContact(cmd.Context(), m); err != nil {
		return fmt.Errorf("sending message: %w", err)
	}

	if isJSON() {
		return printJSON(map[string]any{"success": true})
	}

	fmt.Println("Message sent to the moderators.")
	return nil
}
