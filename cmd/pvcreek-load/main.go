// Command pvcreek-load loads one hourly pageview dump into postgres and/or clickhouse
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"pvcreek/internal/cli"
	"pvcreek/internal/platform/logger"
)

func main() {
	_ = godotenv.Load()

	opt := logger.FromEnv()
	opt.Writer = os.Stderr
	opt.Service = "pvcreek-load"
	logger.Init(opt)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.NewLoadCommand(os.Stdout, os.Stderr).ExecuteContext(ctx)
	if err != nil {
		logger.Get().Error().Err(err).Msg("load failed")
	}
	stop()
	os.Exit(cli.ExitCode(err))
}
