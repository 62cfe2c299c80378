package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/anyrent/shopkit/svc/platform"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := platform.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "shopkit:", err)
		os.Exit(1)
	}
}
