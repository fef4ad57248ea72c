// Package http serves the meta routes: health, readiness, version and service info
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"pvcreek/internal/core/version"
	"pvcreek/internal/modkit/httpkit"
)

// ReadyTimeout bounds each readiness ping
const ReadyTimeout = 2 * time.Second

// Probe is one readiness dependency; a nil Ping reports as skipped
type Probe struct {
	Name string
	Ping func(context.Context) error
}

// Deps feed the meta routes
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	Probes      []Probe
	// CacheDir is empty when dumps stream straight from the mirror
	CacheDir string
	Now      func() time.Time
}

type handlers struct{ Deps }

// Register mounts /health, /ready, /version and /service on r
func Register(r httpkit.Router, d Deps) {
	if d.Now == nil {
		d.Now = time.Now
	}
	h := handlers{d}
	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
}

func stamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }

// HealthResponse is the liveness payload
type HealthResponse struct {
	OK      bool   `json:"ok" example:"true"`
	Service string `json:"service" example:"pvcreek-api"`
	Started string `json:"started" example:"2026-10-01T13:00:00Z"`
	Now     string `json:"now" example:"2026-10-01T13:05:00Z"`
}

// @Summary Liveness
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /meta/health [get]
func (h handlers) health(*http.Request) (any, error) {
	return HealthResponse{OK: true, Service: h.ServiceName, Started: stamp(h.StartedAt), Now: stamp(h.Now())}, nil
}

// Probe outcomes
const (
	ProbeOK      = "ok"
	ProbeFail    = "fail"
	ProbeSkipped = "skipped"
)

// ReadyCheck is the outcome of one probe
type ReadyCheck struct {
	Name   string `json:"name" example:"pg"`
	Status string `json:"status" example:"ok" enums:"ok,fail,skipped"`
	Error  string `json:"error,omitempty"`
}

// ReadyResponse is ok only when no probe failed
type ReadyResponse struct {
	Status string       `json:"status" example:"ok" enums:"ok,fail"`
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"`
}

// @Summary Readiness with a ping per configured sink backend
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse
// @Failure 503 {object} ReadyResponse
// @Router /meta/ready [get]
func (h handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), ReadyTimeout)
	defer cancel()

	checks := make([]ReadyCheck, len(h.Probes))
	var wg sync.WaitGroup
	for i, p := range h.Probes {
		checks[i] = ReadyCheck{Name: p.Name, Status: ProbeSkipped}
		if p.Ping == nil {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := p.Ping(ctx); err != nil {
				checks[i].Status, checks[i].Error = ProbeFail, err.Error()
				return
			}
			checks[i].Status = ProbeOK
		}()
	}
	wg.Wait()

	resp := ReadyResponse{Status: ProbeOK, Checks: checks, Now: stamp(h.Now())}
	for _, c := range checks {
		if c.Status == ProbeFail {
			resp.Status = ProbeFail
			return httpkit.Response{Status: http.StatusServiceUnavailable, Body: resp}, nil
		}
	}
	return resp, nil
}

// @Summary Build and version info
// @Tags Meta
// @Produce json
// @Success 200 {object} version.BuildInfo
// @Router /meta/version [get]
func (h handlers) version(*http.Request) (any, error) {
	return version.Info(h.ServiceName), nil
}

// ServiceResponse is the service identity and uptime
type ServiceResponse struct {
	Name     string `json:"name" example:"pvcreek-api"`
	Started  string `json:"started" example:"2026-10-01T13:00:00Z"`
	Uptime   int64  `json:"uptime" example:"300"`
	CacheDir string `json:"cache_dir,omitempty"`
}

// @Summary Service info and uptime in seconds
// @Tags Meta
// @Produce json
// @Success 200 {object} ServiceResponse
// @Router /meta/service [get]
func (h handlers) service(*http.Request) (any, error) {
	return ServiceResponse{
		Name:     h.ServiceName,
		Started:  stamp(h.StartedAt),
		Uptime:   int64(h.Now().Sub(h.StartedAt) / time.Second),
		CacheDir: h.CacheDir,
	}, nil
}
