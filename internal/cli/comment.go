package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evcraddock/suggestion-board/internal/comment"
)

func newCommentCmd() *cobra.Command {
	var author string

	cmd := &cobra.Command{
		Use:   `comment <id> --author <name> "text"`,
		Short: "Add a comment to a suggestion",
		Long:  "Add a text comment to a suggestion. Retrying after a failed request may post the comment twice.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComment(cmd, args, author)
		},
	}

	cmd.Flags().StringVar(&author, "author", "", "comment author (required)")

	return cmd
}

func runComment(cmd *cobra.Command, args []string, author string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	d := comment.Draft{Author: author, Text: strings.Join(args[1:], " ")}
	if _, problem := d.Normalize(); problem != "" {
		return fmt.Errorf("%s", problem)
	}

	c, err := newAPIClient().AddComment(cmd.Context(), id, d)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(c)
	}

	printCommentSingle(c)
	return nil
}
