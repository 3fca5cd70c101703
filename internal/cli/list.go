package cli

import (
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all suggestions",
		Long:  "List every suggestion in board order: pinned first, then high priority, then newest.",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	views, err := newAPIClient().ListSuggestions(cmd.Context())
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(views)
	}

	return printSuggestionTable(views)
}
