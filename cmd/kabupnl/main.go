package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"kabu-pnl/internal/cli"
	"kabu-pnl/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Config is loaded from --config once flags are parsed.
	rootCmd := cli.NewRootCmd(nil, logging.NewLogger())
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
