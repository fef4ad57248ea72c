// @title         pvcreek API
// @version       0.1.0
// @description   Filtered NDJSON streams over Wikimedia hourly pageview dumps

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"pvcreek/internal/modkit/repokit"
	"pvcreek/internal/platform/config"
	"pvcreek/internal/platform/logger"
	phttp "pvcreek/internal/platform/net/http"
	"pvcreek/internal/platform/store"

	"pvcreek/internal/services/api"
)

func main() {
	_ = godotenv.Load()

	opt := logger.FromEnv()
	if opt.Service == "" {
		opt.Service = api.ServiceName
	}
	logger.Init(opt)
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := config.New()

	// pg and ch are optional; they only feed the readiness probe
	sc := store.ConfigFrom(root)
	sc.Role = "api"
	st, err := store.Open(ctx, sc, store.WithLogger(*logger.Named("store")))
	if err != nil {
		l.Fatal().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(ctx, st)

	// http server (reads PVCREEK_API_PORT and friends)
	srv := phttp.NewServer(root.Prefix("PVCREEK_API_"))

	o := api.OptionsFrom(root)
	o.Store = st
	if err := api.Mount(srv.Router(), o); err != nil {
		l.Fatal().Err(err).Msg("api.Mount failed")
	}

	l.Info().Str("addr", srv.Addr()).Msg("pvcreek-api listening")
	if err := srv.Run(ctx); err != nil {
		l.Error().Err(err).Msg("http server stopped")
	}
}
