package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show suggestion details",
		Long:  "Show full details for a suggestion, including all comments.",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	v, err := newAPIClient().GetSuggestion(cmd.Context(), id)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(v)
	}

	printSuggestionSummary(v)
	fmt.Println()
	if len(v.Comments) > 0 {
		fmt.Printf("Comments (%d):\n", len(v.Comments))
		printCommentList(v.Comments)
	} else {
		fmt.Println("No comments.")
	}

	return nil
}
