package dumps

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	perr "pvcreek/internal/platform/errors"
)

// DefaultBaseURL is the public pageviews dump root
const DefaultBaseURL = "https://dumps.wikimedia.org/other/pageviews/"

// Ext is the extension of every dump file
const Ext = ".gz"

var nameRE = regexp.MustCompile(`^pageviews-(\d{4})(\d{2})(\d{2})-(\d{2})0000\.gz$`)

// FilenameFor returns the canonical dump name for the hour containing t
// The wall clock of t is used as is; its location is ignored
func FilenameFor(t time.Time) string {
	return fmt.Sprintf("pageviews-%04d%02d%02d-%02d0000%s", t.Year(), int(t.Month()), t.Day(), t.Hour(), Ext)
}

// ParseFilename returns the hour a canonical name refers to, in UTC
func ParseFilename(name string) (time.Time, error) {
	m := nameRE.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, perr.InvalidArgf("dumps: %q is not a pageviews dump name", name)
	}
	t, err := time.Parse("2006010215", m[1]+m[2]+m[3]+m[4])
	if err != nil {
		return time.Time{}, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "dumps: %q has no valid hour", name)
	}
	return t, nil
}

// ValidName reports whether name is a canonical dump name
func ValidName(name string) bool {
	_, err := ParseFilename(name)
	return err == nil
}

// URLFor joins base and the YYYY/YYYY-MM/ directory of name
func URLFor(base, name string) (string, error) {
	t, err := ParseFilename(name)
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return fmt.Sprintf("%s%04d/%04d-%02d/%s", base, t.Year(), t.Year(), int(t.Month()), name), nil
}

// ParseHour reads an hour given as RFC3339 or YYYY-MM-DDTHH
// The result is truncated to the hour
func ParseHour(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339, "2006-01-02T15", "2006-01-02T15:04", "2006-01-02 15"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TruncateHour(t), nil
		}
	}
	return time.Time{}, perr.InvalidArgf("dumps: hour %q is neither RFC3339 nor YYYY-MM-DDTHH", s)
}

// TruncateHour drops minutes and below from the wall clock of t
func TruncateHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}
