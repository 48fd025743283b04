package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/samzong/cmg/cmd"
	"github.com/samzong/cmg/internal/logger"
)

func main() {
	// Set up signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd.SetContext(ctx)

	err := cmd.Execute()
	logger.Sync()
	if err != nil {
		if ctx.Err() != nil {
			err = context.Canceled
		}
		os.Exit(cmd.HandleError(err, os.Stderr))
	}
}
