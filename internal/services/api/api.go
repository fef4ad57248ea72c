// Package api assembles the HTTP API: shared middleware, docs, metrics and the v1 modules
package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pvcreek/internal/platform/config"
	"pvcreek/internal/platform/logger"
	phttp "pvcreek/internal/platform/net/http"
	"pvcreek/internal/platform/store"

	"pvcreek/internal/modkit"
	"pvcreek/internal/modkit/httpkit"
	"pvcreek/internal/modkit/swaggerkit"

	metamod "pvcreek/internal/services/api/meta/module"
	pvmod "pvcreek/internal/services/api/pageviews/module"
	creekmod "pvcreek/internal/services/creek/module"
)

// ServiceName is reported by the meta routes
const ServiceName = "pvcreek-api"

// Options are the API options
type Options struct {
	// Config is the unprefixed process config
	Config config.Conf
	// Store is optional; nil backends show as skipped in readiness
	Store *store.Store
	// Creek is built from Config when nil
	Creek *creekmod.Module

	EnableSwagger   bool
	EnableProfiler  bool
	DocsTitleSuffix string
	CORSOrigins     []string
	SlowRequest     time.Duration
	Pageviews       pvmod.Options

	// Metrics defaults to the default prometheus gatherer
	Metrics http.Handler
}

// OptionsFrom reads the PVCREEK_API_ knobs from cfg
func OptionsFrom(cfg config.Conf) Options {
	c := cfg.Prefix("PVCREEK_API_")
	return Options{
		Config:          cfg,
		EnableSwagger:   c.MayBool("SWAGGER", true),
		EnableProfiler:  c.MayBool("PROFILER", false),
		DocsTitleSuffix: c.MayString("DOCS_TITLE_SUFFIX", ""),
		CORSOrigins:     c.MayCSV("CORS_ORIGINS", nil),
		SlowRequest:     c.MayDuration("SLOW", 2*time.Second),
		Pageviews:       pvmod.FromConfig(c),
	}
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) error {
	deps := modkit.FromStore(*logger.Named("api"), opt.Config, opt.Store)

	creek := opt.Creek
	if creek == nil {
		var err error
		if creek, err = creekmod.New(deps); err != nil {
			return err
		}
	}

	pv := opt.Pageviews
	pv.BaseURL = creek.Options().BaseURL
	mods := []modkit.Module{
		metamod.New(deps, ServiceName, creek.Options().CacheDir),
		pvmod.New(creek, pv),
	}

	r.Use(httpkit.CommonStack(httpkit.StackOptions{
		CORSOrigins: opt.CORSOrigins,
		SlowRequest: opt.SlowRequest,
	})...)

	swaggerkit.Mount(r, swaggerkit.Options{Enabled: opt.EnableSwagger, TitleSuffix: opt.DocsTitleSuffix})
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	metrics := opt.Metrics
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	r.Handle("/metrics", metrics)

	httpkit.MountAPIV1(r, nil, func(api httpkit.Router) {
		for _, m := range mods {
			m.MountRoutes(api)
		}
	})
	return nil
}
