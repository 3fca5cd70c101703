// Command sb runs the suggestion board server and talks to it.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/evcraddock/suggestion-board/internal/cli"
	"github.com/evcraddock/suggestion-board/internal/client"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.NewRootCmd().ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}

	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	var apiErr *client.Error
	if errors.As(err, &apiErr) && apiErr.RequestID != "" {
		// Matches the request_id field in the server log.
		fmt.Fprintf(os.Stderr, "Request ID: %s\n", apiErr.RequestID)
	}
	os.Exit(1)
}
