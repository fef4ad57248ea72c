package store

import (
	"strings"
	"time"

	"pvcreek/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	AppName string
	// Role labels this process in backend client info (api, load)
	Role string

	PG PGConfig
	CH CHConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// boot knobs
	ConnectRetries uint64        // default 6
	PingTimeout    time.Duration // default 3s
}

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	Enabled bool
	URL     string

	ConnectRetries uint64
	PingTimeout    time.Duration
}

// ConfigFrom reads PVCREEK_PGSQL_* and PVCREEK_CLICKHOUSE_* from c
// A backend is enabled when its url is set
func ConfigFrom(c config.Conf) Config {
	pg := c.Prefix("PVCREEK_PGSQL_")
	ch := c.Prefix("PVCREEK_CLICKHOUSE_")

	cfg := Config{
		AppName: c.MayString("PVCREEK_APP_NAME", "pvcreek"),
		PG: PGConfig{
			URL:         strings.TrimSpace(pg.MayString("DBURL", "")),
			MaxConns:    int32(pg.MayInt("MAX_CONNS", 4)),
			LogSQL:      pg.MayBool("LOG_SQL", false),
			SlowQueryMs: pg.MayInt("SLOW_MS", 500),
			PingTimeout: pg.MayDuration("PING_TIMEOUT", 3*time.Second),
		},
		CH: CHConfig{
			URL:         strings.TrimSpace(ch.MayString("DBURL", "")),
			PingTimeout: ch.MayDuration("PING_TIMEOUT", 3*time.Second),
		},
	}
	cfg.PG.Enabled = cfg.PG.URL != ""
	cfg.CH.Enabled = cfg.CH.URL != ""
	cfg.PG.ConnectRetries = uint64(pg.MayInt("CONNECT_RETRIES", 6))
	cfg.CH.ConnectRetries = uint64(ch.MayInt("CONNECT_RETRIES", 6))
	return cfg
}
