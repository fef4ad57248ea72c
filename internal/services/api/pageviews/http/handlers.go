// Package http exposes the pageviews stream, the dump cache and dump naming over HTTP
package http

import (
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"pvcreek/internal/adapters/ingest/dumps"
	"pvcreek/internal/core/filter"
	"pvcreek/internal/modkit/httpkit"
	perr "pvcreek/internal/platform/errors"
	"pvcreek/internal/platform/logger"
	"pvcreek/internal/services/creek/domain"
)

// Deps are the handler dependencies
// Cache is nil when the API runs without a cache dir
type Deps struct {
	Streamer domain.StreamerPort
	Cache    domain.CachePort
	BaseURL  string

	// FlushEvery is the number of records between flushes, <= 0 flushes each one
	FlushEvery int
	// Timeout bounds the JSON routes, <= 0 disables it
	Timeout time.Duration
	// MaxStreams caps concurrent streams, <= 0 is unlimited
	MaxStreams int
}

type handlers struct {
	deps Deps
}

var tagsOnce sync.Once

func registerTags() {
	tagsOnce.Do(func() {
		_ = httpkit.RegisterValidation("pageviews_file", func(fl httpkit.FieldLevel) bool {
			return dumps.ValidName(fl.Field().String())
		}, "{0} must be a dump name like pageviews-20240801-130000.gz")
		_ = httpkit.RegisterValidation("pattern", func(fl httpkit.FieldLevel) bool {
			s := fl.Field().String()
			return s == "" || filter.CheckPattern(s) == nil
		}, "{0} is not a valid pattern")
	})
}

// Register mounts the pageviews, cache and dumps routes on r
func Register(r httpkit.Router, d Deps) {
	if d.Streamer == nil {
		panic("pageviews http requires a non nil Streamer")
	}
	registerTags()
	h := &handlers{deps: d}

	httpkit.With(r, httpkit.StreamStack(d.MaxStreams), func(s httpkit.Router) {
		s.Get("/pageviews/{name}", h.stream)
	})
	httpkit.With(r, httpkit.JSONStack(d.Timeout), func(j httpkit.Router) {
		httpkit.Get(j, "/cache/{name}", h.cached)
		httpkit.Post(j, "/cache/{name}", h.download)
		httpkit.GetQuery(j, "/dumps/filename", h.filename)
	})
}

// StreamQuery holds the record criteria accepted by the stream route
type StreamQuery struct {
	Prefix   string `query:"prefix"`
	Contains string `query:"contains"`
	Regex    string `query:"regex"    validate:"pattern"`

	DomainCode   string `query:"domain_code"`
	DomainCodeRe string `query:"domain_code_re" validate:"pattern"`
	PageTitle    string `query:"page_title"`
	PageTitleRe  string `query:"page_title_re"  validate:"pattern"`
	Language     string `query:"language"`
	LanguageRe   string `query:"language_re"    validate:"pattern"`
	Project      string `query:"project"`
	ProjectRe    string `query:"project_re"     validate:"pattern"`

	MinViews *int64 `query:"min_views"`
	MaxViews *int64 `query:"max_views"`
	Mobile   *bool  `query:"mobile"`

	Limit         int  `query:"limit" validate:"min=0"`
	SkipMalformed bool `query:"skip_malformed"`
}

// Criteria converts q to the transport neutral criteria
func (q StreamQuery) Criteria() domain.Criteria {
	return domain.Criteria{
		Prefix:       q.Prefix,
		Contains:     q.Contains,
		Regex:        q.Regex,
		DomainCode:   q.DomainCode,
		DomainCodeRe: q.DomainCodeRe,
		PageTitle:    q.PageTitle,
		PageTitleRe:  q.PageTitleRe,
		Language:     q.Language,
		LanguageRe:   q.LanguageRe,
		Project:      q.Project,
		ProjectRe:    q.ProjectRe,
		MinViews:     q.MinViews,
		MaxViews:     q.MaxViews,
		Mobile:       q.Mobile,
	}
}

type dumpName struct {
	Name string `json:"name" validate:"required,pageviews_file"`
}

func nameParam(r *http.Request) (string, error) {
	n := dumpName{Name: httpkit.Param(r, "name")}
	if err := httpkit.Validate(n); err != nil {
		return "", err
	}
	return n.Name, nil
}

// @Summary Stream the records of one hourly dump
// @Description One JSON record per line; a failure after the first line ends the body with an error line
// @Tags Pageviews
// @Produce application/x-ndjson
// @Param name path string true "dump name, pageviews-YYYYMMDD-HH0000.gz"
// @Success 200 {object} domain.Record
// @Failure 400 {object} http.Envelope
// @Failure 404 {object} http.Envelope
// @Router /pageviews/{name} [get]
func (h *handlers) stream(w http.ResponseWriter, r *http.Request) {
	name, err := nameParam(r)
	if err != nil {
		httpkit.Fail(w, r, err)
		return
	}
	q, err := httpkit.Query[StreamQuery](r)
	if err != nil {
		httpkit.Fail(w, r, err)
		return
	}
	req := domain.Request{Name: name, Limit: q.Limit, SkipMalformed: q.SkipMalformed}
	if err := q.Criteria().Apply(&req); err != nil {
		httpkit.Fail(w, r, err)
		return
	}

	st, err := h.deps.Streamer.Open(r.Context(), req)
	if err != nil {
		httpkit.Fail(w, r, err)
		return
	}
	defer func() { _ = st.Close() }()

	log := logger.C(r.Context()).With().Str("dump", name).Logger()
	out := httpkit.Stream(w, h.deps.FlushEvery)
	for {
		rec, err := st.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Warn().Err(err).Int("lines", out.Lines()).Msg("pageviews: stream failed")
			out.Fail(r, err)
			return
		}
		if err := out.Write(rec); err != nil {
			log.Debug().Err(err).Int("lines", out.Lines()).Msg("pageviews: client went away")
			return
		}
	}
	_ = out.Close()

	s := st.Stats()
	log.Info().
		Int("lines_read", s.LinesRead).
		Int("emitted", s.Emitted).
		Int("skipped", s.Skipped).
		Msg("pageviews: stream done")
}

// CachedResponse reports whether a dump is in the local cache
type CachedResponse struct {
	Name   string `json:"name"   example:"pageviews-20240801-130000.gz"`
	Cached bool   `json:"cached" example:"true"`
}

// DownloadResponse describes a download-once call
// The local path stays server side; clients address the dump by name
type DownloadResponse struct {
	Name       string `json:"name"       example:"pageviews-20240801-130000.gz"`
	Downloaded bool   `json:"downloaded" example:"false"`
}

func (h *handlers) cache() (domain.CachePort, error) {
	if h.deps.Cache == nil {
		return nil, perr.Unavailablef("no cache dir is configured")
	}
	return h.deps.Cache, nil
}

// @Summary Report whether a dump is cached
// @Tags Cache
// @Produce json
// @Param name path string true "dump name"
// @Success 200 {object} CachedResponse
// @Failure 503 {object} http.Envelope
// @Router /cache/{name} [get]
func (h *handlers) cached(r *http.Request) (any, error) {
	c, err := h.cache()
	if err != nil {
		return nil, err
	}
	name, err := nameParam(r)
	if err != nil {
		return nil, err
	}
	ok, err := c.IsCached(name)
	if err != nil {
		return nil, err
	}
	return CachedResponse{Name: name, Cached: ok}, nil
}

// @Summary Download a dump into the cache unless it is already there
// @Tags Cache
// @Produce json
// @Param name path string true "dump name"
// @Success 200 {object} DownloadResponse
// @Failure 503 {object} http.Envelope
// @Router /cache/{name} [post]
func (h *handlers) download(r *http.Request) (any, error) {
	c, err := h.cache()
	if err != nil {
		return nil, err
	}
	name, err := nameParam(r)
	if err != nil {
		return nil, err
	}
	_, downloaded, err := c.Download(r.Context(), name)
	if err != nil {
		return nil, err
	}
	return DownloadResponse{Name: name, Downloaded: downloaded}, nil
}

// FilenameQuery selects the hour to name
type FilenameQuery struct {
	Hour string `query:"hour" validate:"required"`
}

// FilenameResponse is the canonical name and mirror url of an hour
type FilenameResponse struct {
	Hour string `json:"hour" example:"2024-08-01T13:00:00Z"`
	Name string `json:"name" example:"pageviews-20240801-130000.gz"`
	URL  string `json:"url"  example:"https://dumps.wikimedia.org/other/pageviews/2024/2024-08/pageviews-20240801-130000.gz"`
}

// @Summary Canonical dump name and url for an hour
// @Tags Dumps
// @Produce json
// @Param hour query string true "RFC3339 or YYYY-MM-DDTHH"
// @Success 200 {object} FilenameResponse
// @Failure 400 {object} http.Envelope
// @Router /dumps/filename [get]
func (h *handlers) filename(_ *http.Request, q FilenameQuery) (any, error) {
	t, err := dumps.ParseHour(q.Hour)
	if err != nil {
		return nil, perr.WithField(err, "hour")
	}
	name := dumps.FilenameFor(t)
	url, err := dumps.URLFor(h.deps.BaseURL, name)
	if err != nil {
		return nil, err
	}
	return FilenameResponse{Hour: t.Format(time.RFC3339), Name: name, URL: url}, nil
}
