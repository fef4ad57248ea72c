// Package domaincode decodes the dot-segmented domain code column of a
// Wikimedia pageviews dump into language, project domain and mobile flag.
//
// A code has one to three segments:
//
//	en          English Wikipedia
//	en.m        English Wikipedia, mobile
//	en.d        English Wiktionary
//	en.m.d      English Wiktionary, mobile
//	commons.m   commons.wikimedia.org (meta projects are always "en")
//	commons.m.m commons.wikimedia.org, mobile
//
// A two-segment code whose second segment is a mobile marker is always read
// as mobile Wikipedia, even when the marker collides with a project suffix
// ("no.m" is mobile Norwegian Wikipedia, never Norwegian wikimedia.org).
// The encoding cannot tell the two apart.
package domaincode

import (
	"fmt"
	"strings"

	perr "pvcreek/internal/platform/errors"
)

// BaseProject is the project a code refers to when it names no project
const BaseProject = "wikipedia.org"

// metaLanguage is the language reported for every whitelisted meta project
const metaLanguage = "en"

// projects maps a project suffix to its domain; unknown suffixes are used literally
var projects = map[string]string{
	"":    BaseProject,
	"b":   "wikibooks.org",
	"d":   "wiktionary.org",
	"f":   "wikimediafoundation.org",
	"m":   "wikimedia.org",
	"n":   "wikinews.org",
	"q":   "wikiquote.org",
	"s":   "wikisource.org",
	"v":   "wikiversity.org",
	"voy": "wikivoyage.org",
	"w":   "mediawiki.org",
	"wd":  "wikidata.org",
}

// metaProjects is the closed whitelist of wikimedia.org sub projects
var metaProjects = map[string]string{
	"commons":   "commons.wikimedia.org",
	"meta":      "meta.wikimedia.org",
	"incubator": "incubator.wikimedia.org",
	"species":   "species.wikimedia.org",
	"strategy":  "strategy.wikimedia.org",
	"outreach":  "outreach.wikimedia.org",
	"usability": "usability.wikimedia.org",
	"quality":   "quality.wikimedia.org",
}

// mobileMarkers are the second segments that flag a mobile Wikipedia page
var mobileMarkers = map[string]struct{}{
	"m":    {},
	"zero": {},
}

// Site is the decoded form of a domain code
type Site struct {
	Language string `json:"language"`
	Project  string `json:"project_domain"`
	Mobile   bool   `json:"is_mobile"`
}

// InvalidDomainCodeError reports a code outside the one to three segment grammar
type InvalidDomainCodeError struct {
	Token string
}

func (e *InvalidDomainCodeError) Error() string {
	return fmt.Sprintf("invalid domain code %q", e.Token)
}

// Code classifies the error for transports
func (e *InvalidDomainCodeError) Code() perr.ErrorCode { return perr.ErrorCodeMalformed }

// rule is one guarded arm of the decoder; arms are tried in order
type rule struct {
	match  func(parts []string) bool
	decode func(parts []string) Site
}

// rules is evaluated top to bottom and the first matching arm wins.
// The meta project arm must stay ahead of the generic two and three
// segment arms.
var rules = []rule{
	{
		match: func(p []string) bool { return len(p) == 1 },
		decode: func(p []string) Site {
			return Site{Language: p[0], Project: BaseProject}
		},
	},
	{
		match: func(p []string) bool {
			_, ok := metaProjects[p[0]]
			return ok && (len(p) == 2 || len(p) == 3)
		},
		decode: func(p []string) Site {
			return Site{Language: metaLanguage, Project: metaProjects[p[0]], Mobile: len(p) == 3}
		},
	},
	{
		match: func(p []string) bool { return len(p) == 2 && isMobileMarker(p[1]) },
		decode: func(p []string) Site {
			return Site{Language: p[0], Project: BaseProject, Mobile: true}
		},
	},
	{
		match: func(p []string) bool { return len(p) == 2 },
		decode: func(p []string) Site {
			return Site{Language: p[0], Project: ProjectDomain(p[1])}
		},
	},
	{
		match: func(p []string) bool { return len(p) == 3 },
		decode: func(p []string) Site {
			return Site{Language: p[0], Project: ProjectDomain(p[2]), Mobile: true}
		},
	},
}

// Decode maps a domain code to its Site
// It fails with *InvalidDomainCodeError for anything outside one to three
// segments and for an empty leading segment
// The language segment is not checked against any tag grammar: dumps carry
// codes like zh-min-nan and www, which decode as is
func Decode(code string) (Site, error) {
	parts := strings.Split(code, ".")
	if parts[0] == "" {
		return Site{}, &InvalidDomainCodeError{Token: code}
	}
	for _, r := range rules {
		if r.match(parts) {
			return r.decode(parts), nil
		}
	}
	return Site{}, &InvalidDomainCodeError{Token: code}
}

// ProjectDomain resolves a project suffix, falling back to the suffix itself
func ProjectDomain(suffix string) string {
	if d, ok := projects[suffix]; ok {
		return d
	}
	return suffix
}

// MetaProject returns the domain of a whitelisted meta project
func MetaProject(name string) (string, bool) {
	d, ok := metaProjects[name]
	return d, ok
}

// MetaProjects lists the whitelisted meta project names
func MetaProjects() []string {
	out := make([]string, 0, len(metaProjects))
	for k := range metaProjects {
		out = append(out, k)
	}
	return out
}

func isMobileMarker(s string) bool {
	_, ok := mobileMarkers[s]
	return ok
}
