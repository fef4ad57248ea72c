package module

import (
	"time"

	"pvcreek/internal/platform/config"
)

// Options tunes the pageviews routes
type Options struct {
	// BaseURL is the dump mirror the filename route renders; set from the creek options
	BaseURL    string
	Timeout    time.Duration
	MaxStreams int
	FlushEvery int
}

// FromConfig reads TIMEOUT, MAX_STREAMS and FLUSH_EVERY from an already prefixed config
func FromConfig(c config.Conf) Options {
	return Options{
		Timeout:    c.MayDuration("TIMEOUT", 30*time.Second),
		MaxStreams: c.MayInt("MAX_STREAMS", 0),
		FlushEvery: c.MayInt("FLUSH_EVERY", 500),
	}
}
