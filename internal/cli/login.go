package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evcraddock/suggestion-board/internal/client"
)

func newLoginCmd() *cobra.Command {
	var (
		server string
		login  string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as the admin and store a token",
		Long:  "Exchanges the admin login and password for a bearer token and saves it to the config file. The password is read from stdin.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd.Context(), server, login, os.Stdin)
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "server URL (default: from config or "+defaultServerURL+")")
	cmd.Flags().StringVar(&login, "login", "admin", "admin login")

	return cmd
}

func runLogin(ctx context.Context, serverFlag, login string, in io.Reader) error {
	serverURL := serverFlag
	if serverURL == "" {
		serverURL = getServerURL()
	}

	fmt.Print("Password: ")
	password, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("reading input: %w", err)
	}
	password = strings.TrimRight(password, "\r\n")
	if password == "" {
		return fmt.Errorf("no password provided")
	}

	resp, err := client.New(serverURL, "").Login(ctx, login, password)
	if err != nil {
		return fmt.Errorf("logging in: %w", err)
	}

	// Load existing config to preserve other fields
	cfg, err := loadConfig()
	if err != nil {
		cfg = CLIConfig{}
	}

	cfg.Token = resp.Token
	if serverFlag != "" {
		cfg.ServerURL = serverFlag
	}

	if err := saveConfig(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("✓ Logged in as %s. Token expires %s.\n", resp.User.Login, resp.ExpiresAt)
	return nil
}
