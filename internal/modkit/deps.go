// Package modkit provides module wiring and core deps
package modkit

import (
	"pvcreek/internal/modkit/repokit"
	"pvcreek/internal/platform/config"
	"pvcreek/internal/platform/logger"
	"pvcreek/internal/platform/store"
)

// Deps holds core dependencies passed to modules
// PG and CH are nil when the backend is not configured
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
}

// FromStore fills the backend fields from an opened store; st may be nil
func FromStore(log logger.Logger, cfg config.Conf, st *store.Store) Deps {
	d := Deps{Log: log, Cfg: cfg}
	if st != nil {
		d.PG = st.PG
		d.CH = st.CH
	}
	return d
}
