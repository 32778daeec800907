package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/desertthunder/roastify/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	if err := shared.LoadEnv(); err != nil {
		logger.Warn("failed to load .env", "error", err)
	}

	runner := NewRunner(RunnerOpts{Logger: logger})
	defer runner.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp(runner).Run(ctx, os.Args); err != nil {
		logger.Error("application error", "error", err)
		runner.Close()
		stop()
		os.Exit(1)
	}
}
