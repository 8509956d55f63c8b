// File: cmd/cdpctl/main.go
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/xkilldash9x/cdpctl/cmd"
	"github.com/xkilldash9x/cdpctl/internal/observability"
)

// main is the entry point of the application.
func main() {
	// Interrupt signals cancel the command context for graceful shutdown:
	// in-flight waits and streams unwind, sessions detach.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := cmd.Execute(ctx)
	observability.Sync()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
