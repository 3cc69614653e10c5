// ABOUTME: Entry point for the course-gateway command server.
// ABOUTME: Runs the cobra root command under a SIGINT/SIGTERM-aware context.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/2389/course-gateway/internal/gateway"
)

// Version is set by goreleaser at build time.
var version = "dev"

func main() {
	gateway.Version = version

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}
