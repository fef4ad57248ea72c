package cli

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"pvcreek/internal/adapters/ingest/dumps"
	perr "pvcreek/internal/platform/errors"
	"pvcreek/internal/services/creek/domain"
	creekmod "pvcreek/internal/services/creek/module"
)

// sourceFlags select the dump and where it comes from
type sourceFlags struct {
	hour          string
	baseURL       string
	cacheDir      string
	httpTimeout   time.Duration
	retries       int
	skipMalformed bool
	matchTimeout  time.Duration
}

// defaults come from PVCREEK_SOURCE_* so the service and the CLIs share them
func (s *sourceFlags) bind(fs *pflag.FlagSet, d creekmod.Options) {
	fs.StringVar(&s.hour, "hour", "", "hour of the dump, RFC3339 or YYYY-MM-DDTHH")
	fs.StringVar(&s.baseURL, "base-url", d.BaseURL, "pageviews mirror base url")
	fs.StringVar(&s.cacheDir, "cache-dir", d.CacheDir, "download dumps once into this dir and stream from disk")
	fs.DurationVar(&s.httpTimeout, "http-timeout", d.HTTPTimeout, "whole request timeout for the mirror, 0 is none")
	fs.IntVar(&s.retries, "retries", d.Retries, "retries for transient mirror failures")
	fs.BoolVar(&s.skipMalformed, "skip-malformed", d.SkipMalformed, "drop malformed lines with a warning instead of failing")
	fs.DurationVar(&s.matchTimeout, "match-timeout", d.MatchTimeout, "limit for one pattern evaluation, exceeding it fails the stream")
}

func (s *sourceFlags) options(d creekmod.Options) creekmod.Options {
	d.BaseURL = s.baseURL
	d.CacheDir = s.cacheDir
	d.HTTPTimeout = s.httpTimeout
	d.Retries = s.retries
	d.SkipMalformed = s.skipMalformed
	d.MatchTimeout = s.matchTimeout
	return d
}

// target fills the dump selection of req from a positional arg or --hour
// A positional arg that is a canonical dump name is fetched, anything else is a local path
func (s *sourceFlags) target(args []string, req *domain.Request) error {
	if len(args) > 0 && s.hour != "" {
		return perr.InvalidArgf("give either a dump name, a path or --hour")
	}
	if s.hour != "" {
		t, err := dumps.ParseHour(s.hour)
		if err != nil {
			return err
		}
		req.Hour = t
		return nil
	}
	if len(args) == 0 {
		return perr.InvalidArgf("a dump name, a path or --hour is required")
	}
	if dumps.ValidName(args[0]) {
		req.Name = args[0]
	} else {
		req.Path = args[0]
	}
	return nil
}

// name resolves the dump name for commands that only work on the mirror
func (s *sourceFlags) name(args []string) (string, error) {
	var req domain.Request
	if err := s.target(args, &req); err != nil {
		return "", err
	}
	kind, name, err := req.Target()
	if err != nil {
		return "", err
	}
	if kind == domain.TargetPath {
		return "", perr.InvalidArgf("%q is not a pageviews dump name", name)
	}
	return name, nil
}

// criteriaFlags are the line and record filters
// numbers and mobile are strings so unset stays distinguishable from zero
type criteriaFlags struct {
	linePrefix, lineContains, lineRegex string

	domainCode, domainCodeRe string
	pageTitle, pageTitleRe   string
	language, languageRe     string
	project, projectRe       string

	minViews, maxViews string
	mobile             string
	limit              int
}

func (c *criteriaFlags) bind(fs *pflag.FlagSet) {
	fs.StringVar(&c.linePrefix, "line-prefix", "", "keep raw lines starting with this text")
	fs.StringVar(&c.lineContains, "line-contains", "", "keep raw lines containing this text")
	fs.StringVar(&c.lineRegex, "line-regex", "", "keep raw lines matching this pattern anywhere")

	fs.StringVar(&c.domainCode, "domain-code", "", "exact domain code, e.g. en.m")
	fs.StringVar(&c.domainCodeRe, "domain-code-re", "", "domain code pattern")
	fs.StringVar(&c.pageTitle, "page-title", "", "exact page title")
	fs.StringVar(&c.pageTitleRe, "page-title-re", "", "page title pattern")
	fs.StringVar(&c.language, "language", "", "exact language, e.g. en")
	fs.StringVar(&c.languageRe, "language-re", "", "language pattern")
	fs.StringVar(&c.project, "project", "", "exact project domain, e.g. wikipedia.org")
	fs.StringVar(&c.projectRe, "project-re", "", "project domain pattern")

	fs.StringVar(&c.minViews, "min-views", "", "lowest view count kept")
	fs.StringVar(&c.maxViews, "max-views", "", "highest view count kept")
	fs.StringVar(&c.mobile, "mobile", "", "true keeps mobile sites only, false desktop only")
	fs.IntVar(&c.limit, "limit", 0, "stop after this many records, 0 is all")
}

func (c *criteriaFlags) criteria() (domain.Criteria, error) {
	out := domain.Criteria{
		Prefix:       c.linePrefix,
		Contains:     c.lineContains,
		Regex:        c.lineRegex,
		DomainCode:   c.domainCode,
		DomainCodeRe: c.domainCodeRe,
		PageTitle:    c.pageTitle,
		PageTitleRe:  c.pageTitleRe,
		Language:     c.language,
		LanguageRe:   c.languageRe,
		Project:      c.project,
		ProjectRe:    c.projectRe,
	}
	var err error
	if out.MinViews, err = optInt("min-views", c.minViews); err != nil {
		return out, err
	}
	if out.MaxViews, err = optInt("max-views", c.maxViews); err != nil {
		return out, err
	}
	if s := strings.TrimSpace(c.mobile); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return out, perr.WithField(perr.Validationf("--mobile must be true or false, got %q", s), "mobile")
		}
		out.Mobile = &b
	}
	if c.limit < 0 {
		return out, perr.WithField(perr.Validationf("--limit must be at least 0"), "limit")
	}
	return out, nil
}

// request builds the creek request for args
func (c *criteriaFlags) request(src *sourceFlags, args []string) (domain.Request, error) {
	req := domain.Request{Limit: c.limit, SkipMalformed: src.skipMalformed}
	if err := src.target(args, &req); err != nil {
		return req, err
	}
	crit, err := c.criteria()
	if err != nil {
		return req, err
	}
	if err := crit.Apply(&req); err != nil {
		return req, err
	}
	return req, nil
}

func optInt(flag, raw string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, perr.WithField(perr.Validationf("--%s must be an integer, got %q", flag, raw), strings.ReplaceAll(flag, "-", "_"))
	}
	return &n, nil
}
