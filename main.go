package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/TFMV/dijkstraviz/cmd"
)

func main() {
	// Cancel on SIGINT/SIGTERM so the loop and server shut down cleanly.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
