// Command pvcreek filters and streams Wikimedia hourly pageview dumps
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"pvcreek/internal/cli"
	"pvcreek/internal/platform/logger"
)

func main() {
	// optional .env, real env wins
	_ = godotenv.Load()

	// stdout carries records, so logs go to stderr
	opt := logger.FromEnv()
	opt.Writer = os.Stderr
	opt.Service = "pvcreek"
	logger.Init(opt)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.NewRootCommand(os.Stdout, os.Stderr).ExecuteContext(ctx)
	var exit cli.ExitError
	if err != nil && !errors.As(err, &exit) {
		logger.Get().Error().Err(err).Msg("pvcreek failed")
	}
	stop()
	os.Exit(cli.ExitCode(err))
}
