package module

import (
	"pvcreek/internal/platform/config"
	"pvcreek/internal/services/load/service"
)

// Options holds the settings of the load module
type Options struct {
	BatchSize    int
	CreateSchema bool
	// UsePG and UseCH select sinks among the configured backends
	UsePG bool
	UseCH bool
}

// FromConfig reads the load options from config with PVCREEK_LOAD_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("PVCREEK_LOAD_")
	return Options{
		BatchSize:    c.MayInt("BATCH", service.DefaultBatchSize),
		CreateSchema: c.MayBool("CREATE_SCHEMA", false),
		UsePG:        c.MayBool("PG", true),
		UseCH:        c.MayBool("CH", true),
	}
}
