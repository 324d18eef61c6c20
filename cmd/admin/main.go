package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root, cleanup := newRootCmd(loadEnv)
	err := root.ExecuteContext(ctx)
	cleanup()
	if err != nil {
		stop()
		os.Exit(1)
	}
}
