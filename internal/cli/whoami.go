package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/evcraddock/suggestion-board/internal/auth"
	"github.com/evcraddock/suggestion-board/internal/client"
)

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Check connection and auth status",
		Long:  "Tests the connection to the server and checks whether the stored token is valid.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoami(cmd.Context())
		},
	}
}

func runWhoami(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	serverURL := getServerURL()
	token, source := activeToken()

	fmt.Printf("Server:  %s\n", serverURL)

	c := client.New(serverURL, token)
	if err := c.Health(ctx); err != nil {
		fmt.Printf("Status:  ✗ cannot reach server (%v)\n", err)
		return nil
	}

	if token == "" {
		fmt.Println("Token:   not configured")
		fmt.Println("\nRun 'sb login' to authenticate.")
		return nil
	}

	fmt.Printf("Token:   %s\n", describeToken(token, source))

	user, err := c.Verify(ctx)
	var apiErr *client.Error
	switch {
	case err == nil:
		fmt.Printf("Status:  ✓ authenticated as %s (%s)\n", user.Login, user.Role)
	case errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized:
		fmt.Println("Status:  ✗ invalid or expired token")
		if auth.CredentialKind(token) == "api key" {
			fmt.Println("\nThe API key may have been revoked; create a new one with 'sb key create'.")
		} else {
			fmt.Println("\nRun 'sb login' to re-authenticate.")
		}
	case errors.As(err, &apiErr) && apiErr.Status == http.StatusForbidden:
		fmt.Println("Status:  ✗ token is not a moderator token")
	default:
		fmt.Printf("Status:  ✗ unexpected response (%v)\n", err)
	}

	return nil
}
