// Package cli defines the cobra command tree for sb.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/evcraddock/suggestion-board/internal/client"
	"github.com/evcraddock/suggestion-board/internal/config"
)

var (
	flagFormat string
	flagDB     string
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sb",
		Short:         "Run and use a community suggestion board",
		Long:          "A suggestion board where anyone can post, like and comment on suggestions, and moderators pin, prioritize and resolve them. Run the server with 'sb serve' or talk to one from the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path; overrides SB_DATABASE_URL (default: ~/.suggestion-board/board.db)")

	root.AddCommand(
		newServeCmd(),
		newListCmd(),
		newShowCmd(),
		newAddCmd(),
		newLikeCmd(),
		newCommentCmd(),
		newCommentsCmd(),
		newPinCmd(),
		newPriorityCmd(),
		newStatusCmd(),
		newRemoveCmd(),
		newContactCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newKeyCmd(),
		newHashPasswordCmd(),
		newVersionCmd(),
	)

	return root
}

// storeConfig applies the --db flag to cfg. An explicit --db always
// selects that SQLite file, even when SB_DATABASE_URL is set, so that
// `sb serve` and `sb key` agree on which database they use.
func storeConfig(cfg config.Config) config.Config {
	if flagDB != "" {
		cfg.DBPath = flagDB
		cfg.DatabaseURL = ""
	}
	return cfg
}

// openDB opens the database that holds API keys, chosen the same way
// `sb serve` chooses its store.
func openDB(ctx context.Context) (*sql.DB, func(), error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, nil, err
	}
	h, err := openStore(ctx, storeConfig(cfg))
	if err != nil {
		return nil, nil, err
	}
	return h.db, func() { closeDB(h) }, nil
}

// newAPIClient creates an HTTP client for the suggestion board API.
func newAPIClient() *client.Client {
	return client.New(getServerURL(), getToken())
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

// closeDB closes the store, logging any error to stderr.
func closeDB(h *storeHandle) {
	if err := h.close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing database: %v\n", err)
	}
}

// parseID parses a positive suggestion id argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid suggestion ID: %s", arg)
	}
	return id, nil
}
