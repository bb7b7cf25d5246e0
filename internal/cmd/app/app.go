// Package app is helper for simple cli apps.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"
)

// Run calls run with development logger and context canceled on interrupt.
func Run(run func(ctx context.Context, lg *zap.Logger) error) {
	lg, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, lg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		cancel()
		os.Exit(2)
	}
}
