package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/suggestion-board/internal/client"
	"github.com/evcraddock/suggestion-board/internal/suggestion"
)

func newPinCmd() *cobra.Command {
	var off bool

	cmd := &cobra.Command{
		Use:   "pin <id>",
		Short: "Pin or unpin a suggestion (moderator)",
		Long:  "Pin a suggestion to the top of the board. Use --off to unpin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			res, err := newAPIClient().SetPinned(cmd.Context(), id, !off)
			if err != nil {
				return err
			}
			state := "pinned"
			if !res.Suggestion.IsPinned {
				state = "unpinned"
			}
			return printModeration(res, state)
		},
	}

	cmd.Flags().BoolVar(&off, "off", false, "unpin instead of pin")

	return cmd
}

func newPriorityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "priority <id> <high|normal|low|none>",
		Short: "Set a suggestion's priority (moderator)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, ok := suggestion.ParsePriority(args[1])
			if !ok {
				return fmt.Errorf("invalid priority %q (use high, normal, low or none)", args[1])
			}
			res, err := newAPIClient().SetPriority(cmd.Context(), id, string(p))
			if err != nil {
				return err
			}
			return printModeration(res, "priority "+formatPriority(res.Suggestion.Priority))
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <new|reviewed|resolved|rejected>",
		Short: "Set a suggestion's status (moderator)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			st, ok := suggestion.ParseStatus(args[1])
			if !ok {
				return fmt.Errorf("invalid status %q (use new, reviewed, resolved or rejected)", args[1])
			}
			res, err := newAPIClient().SetStatus(cmd.Context(), id, string(st))
			if err != nil {
				return err
			}
			return printModeration(res, "status "+string(res.Suggestion.Status))
		},
	}
}

func printModeration(res *client.ModerationResult, state string) error {
	if isJSON() {
		return printJSON(res)
	}
	if !res.Changed {
		fmt.Printf("Suggestion #%d already %s.\n", res.Suggestion.ID, state)
		return nil
	}
	fmt.Printf("Suggestion #%d %s.\n", res.Suggestion.ID, state)
	return nil
}
