package ch

import (
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"

	"pvcreek/internal/core/version"
)

// BuildClientInfo describes this process to the server (system.query_log client fields)
// role examples: "api", "load"
func BuildClientInfo(app, role string) clickhouse.ClientInfo {
	host, _ := os.Hostname()

	type kv = struct{ Name, Version string }

	products := []kv{
		{Name: tidy(app), Version: tidy(version.Version)},
		{Name: "go", Version: runtime.Version()},
		{Name: "commit", Version: vcsShortSHA()},
		{Name: "host", Version: tidy(host)},
	}
	if r := tidy(role); r != "" {
		products = append(products, kv{Name: "role", Version: r})
	}
	return clickhouse.ClientInfo{Products: products}
}

func vcsShortSHA() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 7 {
				return s.Value[:7]
			}
		}
	}
	return "unknown"
}

func tidy(s string) string { return strings.TrimSpace(s) }
