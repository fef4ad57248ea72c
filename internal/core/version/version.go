// Package version carries build information stamped at link time
package version

// BuildInfo holds version information about a pvcreek binary
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Set via -ldflags "-X 'pvcreek/internal/core/version.Version=v0.1.0'
// -X 'pvcreek/internal/core/version.Commit=abcd' -X 'pvcreek/internal/core/version.Date=2026-10-01'"
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info returns the build information for service
func Info(service string) BuildInfo {
	if service == "" {
		service = "pvcreek"
	}
	return BuildInfo{
		Service: service,
		Version: Version,
		Commit:  Commit,
		Date:    Date,
	}
}
