// Package modkit provides module wiring and core deps
package modkit

import (
	"triggerbot/internal/modkit/repokit"
	"triggerbot/internal/platform/config"
	"triggerbot/internal/platform/logger"
	"triggerbot/internal/platform/store"

	"github.com/redis/go-redis/v9"
)

// Deps holds core dependencies passed to modules
// CH and RDS are optional and nil when their SERVICE_*_ENABLED flag is off
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
	RDS redis.UniversalClient
}

// FromStore lifts an opened store into module deps
func FromStore(st *store.Store, cfg config.Conf, log logger.Logger) Deps {
	return Deps{Log: log, Cfg: cfg, PG: st.PG, CH: st.CH, RDS: st.RDS}
}
