// cmd/frontcheck/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/octans/frontcheck/internal/cli"
)

func main() {
	// Cancelling the context lets the run close the browser before exiting.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.Execute(ctx)
}
