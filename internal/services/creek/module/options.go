package module

import (
	"time"

	"pvcreek/internal/adapters/ingest/dumps"
	"pvcreek/internal/core/filter"
	"pvcreek/internal/platform/config"
)

// Options holds the source settings of the creek module
type Options struct {
	BaseURL        string
	CacheDir       string
	HTTPTimeout    time.Duration
	Retries        int
	RetryBase      time.Duration
	RetainMaxDays  int
	RetainMaxBytes int64
	SkipMalformed  bool
	MatchTimeout   time.Duration
}

// Defaults returns the options used when nothing is configured
func Defaults() Options {
	return Options{
		BaseURL:      dumps.DefaultBaseURL,
		Retries:      3,
		RetryBase:    500 * time.Millisecond,
		MatchTimeout: filter.DefaultMatchTimeout,
	}
}

// FromConfig reads the creek options from config with PVCREEK_SOURCE_ prefix
func FromConfig(cfg config.Conf) Options {
	src := cfg.Prefix("PVCREEK_SOURCE_")
	d := Defaults()
	return Options{
		BaseURL:        src.MayURL("BASE_URL", d.BaseURL),
		CacheDir:       src.MayString("CACHE_DIR", ""),
		HTTPTimeout:    src.MayDuration("HTTP_TIMEOUT", 0), // 0 == no client timeout
		Retries:        src.MayInt("RETRIES", d.Retries),
		RetryBase:      src.MayDuration("RETRY_BASE", d.RetryBase),
		RetainMaxDays:  src.MayInt("RETAIN_MAX_DAYS", 0),
		RetainMaxBytes: src.MayInt64("RETAIN_MAX_BYTES", 0),
		SkipMalformed:  src.MayBool("SKIP_MALFORMED", false),
		MatchTimeout:   src.MayDuration("MATCH_TIMEOUT", d.MatchTimeout),
	}
}
