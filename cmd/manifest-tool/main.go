package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/platinummonkey/plugin-manifest-tool/pkg/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	// Create and execute root command
	rootCmd := cli.NewRootCommand()
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil && !errors.Is(err, cli.ErrValidationFailed) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(cli.ExitCode(err))
}
