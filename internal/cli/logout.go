package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evcraddock/suggestion-board/internal/auth"
)

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored token",
		Long:  "Removes the stored token from the config file. Tokens are stateless, so a copied token stays valid until it expires.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout()
		},
	}
}

func runLogout() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cfg.Token == "" {
		fmt.Println("Not logged in.")
		return nil
	}

	kind := auth.CredentialKind(cfg.Token)
	cfg.Token = ""
	if err := saveConfig(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	if kind == "api key" {
		fmt.Println("✓ API key removed from config. It stays valid until revoked with 'sb key revoke'.")
	} else {
		fmt.Println("✓ Logged out. Token removed.")
	}
	if os.Getenv("SB_TOKEN") != "" {
		fmt.Println("Note: SB_TOKEN is still set and will keep being used.")
	}
	return nil
}
