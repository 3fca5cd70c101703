package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/evcraddock/suggestion-board/internal/auth"
)

func newKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage moderator API keys",
		Long:  "Create, list and revoke moderator API keys directly in the database. Use on the server host.",
	}

	cmd.AddCommand(newKeyCreateCmd(), newKeyListCmd(), newKeyRevokeCmd())
	return cmd
}

func newKeyCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create an API key",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, done, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			raw, key, err := auth.NewAPIKeyStore(database).Create(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			if isJSON() {
				return printJSON(map[string]any{"key": raw, "apiKey": key})
			}
			fmt.Printf("API key #%d (%s) created:\n\n  %s\n\nStore it now; it will not be shown again.\n", key.ID, key.Name, raw)
			return nil
		},
	}
}

func newKeyListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List API keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, done, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			keys, err := auth.NewAPIKeyStore(database).List(cmd.Context())
			if err != nil {
				return err
			}

			if isJSON() {
				if keys == nil {
					keys = []auth.APIKey{}
				}
				return printJSON(keys)
			}
			return printKeyTable(keys)
		},
	}
}

func newKeyRevokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <id>",
		Short: "Revoke an API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid key ID: %s", args[0])
			}

			database, done, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			if err := auth.NewAPIKeyStore(database).Delete(cmd.Context(), id); err != nil {
				return err
			}

			if isJSON() {
				return printJSON(map[string]any{"id": id, "revoked": true})
			}
			fmt.Printf("API key #%d revoked.\n", id)
			return nil
		},
	}
}

func printKeyTable(keys []auth.APIKey) error {
	if len(keys) == 0 {
		fmt.Println("No API keys.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tNAME\tPREFIX\tCREATED\tLAST USED"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	for _, k := range keys {
		lastUsed := "never"
		if k.LastUsedAt != nil {
			lastUsed = k.LastUsedAt.Local().Format("2006-01-02 15:04")
		}
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s…\t%s\t%s\n",
			k.ID, k.Name, k.KeyPrefix, k.CreatedAt.Local().Format("2006-01-02 15:04"), lastUsed); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	return w.Flush()
}
