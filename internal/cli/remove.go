package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a suggestion (moderator)",
		Long:  "Remove a suggestion and all its comments.",
		Args:  cobra.ExactArgs(1),
		RunE:  runRemove,
	}
}

func runRemove(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	if err := newAPIClient().DeleteSuggestion(cmd.Context(), id); err != nil {
		return err
	}

	if isJSON() {
		return printJSON(map[string]any{
			"id":      id,
			"removed": true,
		})
	}

	fmt.Printf("Suggestion #%d removed.\n", id)
	return nil
}
