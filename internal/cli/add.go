package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evcraddock/suggestion-board/internal/suggestion"
)

func newAddCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   `add <name> "message"`,
		Short: "Post a suggestion",
		Long:  "Post a new suggestion under the given name. Categories: infrastructure, ecology, transport, safety, culture, other (default).",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, args, category)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "suggestion category")

	return cmd
}

func runAdd(cmd *cobra.Command, args []string, category string) error {
	d := suggestion.Draft{
		Name:     args[0],
		Message:  strings.Join(args[1:], " "),
		Category: category,
	}
	if _, problem := d.Normalize(); problem != "" {
		return fmt.Errorf("%s", problem)
	}

	v, err := newAPIClient().CreateSuggestion(cmd.Context(), d)
	if err != nil {
		return fmt.Errorf("adding suggestion: %w", err)
	}

	if isJSON() {
		return printJSON(v)
	}

	fmt.Println("Suggestion posted!")
	printSuggestionSummary(v)
	return nil
}
