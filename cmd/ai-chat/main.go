package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"aichat/internal/cli"
	"aichat/internal/ui"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root := cli.NewRootCommand(&cli.App{})
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, ui.Default().Error.Render("Error: "+err.Error()))
		cancel()
		os.Exit(1)
	}
}
