package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/grovetools/release/cli"
	"github.com/grovetools/release/cmd"
	"github.com/grovetools/release/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := cmd.NewReleaseCmd()
	err := rootCmd.ExecuteContext(ctx)
	stop()

	verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")
	code := cli.NewErrorHandler(verbose).Handle(err)
	logging.Close()
	os.Exit(code)
}
