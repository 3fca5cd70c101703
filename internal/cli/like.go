package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLikeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "like <id>",
		Short: "Like a suggestion",
		Args:  cobra.ExactArgs(1),
		RunE:  runLike,
	}
}

func runLike(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	likes, err := newAPIClient().Like(cmd.Context(), id)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(map[string]any{"id": id, "likes": likes})
	}

	fmt.Printf("Suggestion #%d now has %d likes.\n", id, likes)
	return nil
}
