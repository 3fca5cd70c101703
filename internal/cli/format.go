package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/evcraddock/suggestion-board/internal/board"
	"github.com/evcraddock/suggestion-board/internal/comment"
	"github.com/evcraddock/suggestion-board/internal/suggestion"
)

// printJSON marshals v as indented JSON and writes it to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printSuggestionSummary prints a single suggestion in text format.
func printSuggestionSummary(v *board.View) {
	fmt.Printf("Suggestion #%d\n", v.ID)
	fmt.Printf("  From:      %s\n", v.Name)
	fmt.Printf("  Message:   %s\n", v.Message)
	fmt.Printf("  Category:  %s\n", v.Category)
	fmt.Printf("  Status:    %s\n", v.Status)
	fmt.Printf("  Priority:  %s\n", formatPriority(v.Priority))
	fmt.Printf("  Likes:     %d\n", v.Likes)
	if v.IsPinned {
		fmt.Println("  Pinned:    yes")
	}
	fmt.Printf("  Posted:    %s\n", v.Date.Local().Format("2006-01-02 15:04"))
}

// printSuggestionTable prints suggestions as a formatted table in the
// order given.
func printSuggestionTable(views []board.View) error {
	if len(views) == 0 {
		fmt.Println("No suggestions yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tPIN\tPRIORITY\tSTATUS\tLIKES\tCOMMENTS\tFROM\tMESSAGE"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(w, "--\t---\t--------\t------\t-----\t--------\t----\t-------"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, v := range views {
		pin := ""
		if v.IsPinned {
			pin = "*"
		}
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			v.ID, pin, formatPriority(v.Priority), v.Status, v.Likes, len(v.Comments),
			truncate(v.Name, 20), truncate(v.Message, 50)); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	fmt.Printf("\nTotal: %d suggestions\n", len(views))
	return nil
}

// printCommentList prints comments in text format.
func printCommentList(comments []*comment.Comment) {
	if len(comments) == 0 {
		fmt.Println("No comments.")
		return
	}

	for _, c := range comments {
		fmt.Printf("[%s] #%d (%s)\n  %s\n\n",
			c.Date.Local().Format("2006-01-02 15:04"), c.ID, c.Author, c.Text)
	}
}

// printCommentSingle prints a single comment in text format.
func printCommentSingle(c *comment.Comment) {
	fmt.Printf("Comment #%d added to suggestion #%d.\n  %s\n", c.ID, c.SuggestionID, c.Text)
}

// formatPriority returns the priority name, or "-" when unset.
func formatPriority(p suggestion.Priority) string {
	if p == suggestion.PriorityUnset {
		return "-"
	}
	return string(p)
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
