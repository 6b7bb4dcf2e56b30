package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/keepaway/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.NewRootCommand().ExecuteContext(ctx)
	if err == nil {
		return
	}

	// stdout may already hold a JSON error response; stderr gets the
	// plain message either way.
	fmt.Fprintln(os.Stderr, "error:", err)
	stop()
	os.Exit(cli.GetExitCode(err))
}
