// Package main is the entry point for the tasktrack CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"tasktrack/internal/backend"
	"tasktrack/internal/cli"
	"tasktrack/internal/commands"
)

func main() {
	// Cancel on interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, backend.Shared)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}
