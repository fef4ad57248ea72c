// Package config reads settings through prefixed views over the environment
package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	perr "pvcreek/internal/platform/errors"
	"pvcreek/internal/platform/logger"
)

// Lookup resolves a fully qualified key; ok is false when it is not set
type Lookup func(key string) (value string, ok bool)

// Conf is a namespaced view, e.g. New().Prefix("PVCREEK_SOURCE_")
// The zero Conf reads the process environment
type Conf struct {
	prefix string
	lookup Lookup
}

// New returns a root view over the process environment
func New() Conf { return Conf{lookup: os.LookupEnv} }

// FromMap returns a root view over m, handy in tests
func FromMap(m map[string]string) Conf {
	return Conf{lookup: func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}}
}

// Prefix returns a child view; prefixes nest
func (c Conf) Prefix(p string) Conf {
	c.prefix += p
	return c
}

// Key returns the fully qualified name of k
func (c Conf) Key(k string) string { return c.prefix + k }

// value returns the trimmed value of k; blank counts as unset
func (c Conf) value(k string) (string, bool) {
	look := c.lookup
	if look == nil {
		look = os.LookupEnv
	}
	v, ok := look(c.Key(k))
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// may parses k with parse, falling back to def when unset or invalid
// Invalid values are logged so a typo does not go unnoticed
func may[T any](c Conf, k string, def T, kind string, parse func(string) (T, error)) T {
	s, ok := c.value(k)
	if !ok {
		return def
	}
	v, err := parse(s)
	if err != nil {
		logger.Get().Warn().Str("key", c.Key(k)).Str("value", s).Str("want", kind).Msg("config: invalid value, using default")
		return def
	}
	return v
}

// must parses k with parse and panics with an InvalidArgument error when unset or invalid
func must[T any](c Conf, k, kind string, parse func(string) (T, error)) T {
	s, ok := c.value(k)
	if !ok {
		panic(perr.InvalidArgf("config: %s is required", c.Key(k)))
	}
	v, err := parse(s)
	if err != nil {
		panic(perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "config: %s=%q is not a valid %s", c.Key(k), s, kind))
	}
	return v
}

func str(s string) (string, error) { return s, nil }

func absURL(s string) (*url.URL, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, perr.InvalidArgf("%q is not an absolute url", s)
	}
	return u, nil
}

func int64s(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) }

// MayString returns k or def
func (c Conf) MayString(k, def string) string { return may(c, k, def, "string", str) }

// MayInt returns k as an int or def
func (c Conf) MayInt(k string, def int) int { return may(c, k, def, "int", strconv.Atoi) }

// MayInt64 returns k as an int64 or def
func (c Conf) MayInt64(k string, def int64) int64 { return may(c, k, def, "int64", int64s) }

// MayBool returns k as a bool or def
func (c Conf) MayBool(k string, def bool) bool { return may(c, k, def, "bool", strconv.ParseBool) }

// MayDuration returns k as a duration (250ms, 2s, 1h) or def
func (c Conf) MayDuration(k string, def time.Duration) time.Duration {
	return may(c, k, def, "duration", time.ParseDuration)
}

// MayURL returns k when it is an absolute url, def otherwise
func (c Conf) MayURL(k, def string) string {
	return may(c, k, def, "absolute url", func(s string) (string, error) {
		if _, err := absURL(s); err != nil {
			return "", err
		}
		return s, nil
	})
}

// MayCSV splits k on commas, dropping blanks; def when nothing is left
func (c Conf) MayCSV(k string, def []string) []string {
	s, ok := c.value(k)
	if !ok {
		return def
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// MustString returns k or panics
func (c Conf) MustString(k string) string { return must(c, k, "string", str) }

// MustInt returns k as an int or panics
func (c Conf) MustInt(k string) int { return must(c, k, "int", strconv.Atoi) }

// MustURL returns k as an absolute url or panics
func (c Conf) MustURL(k string) *url.URL { return must(c, k, "absolute url", absURL) }
