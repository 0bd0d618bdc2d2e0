// Package module wires meta endpoints into the API
package module

import (
	"context"
	"time"

	"triggerbot/internal/modkit"
	"triggerbot/internal/modkit/httpkit"
	"triggerbot/internal/platform/store"
	metahttp "triggerbot/internal/services/api/meta/http"
)

// Module implements modkit.Module
type Module struct {
	built modkit.Built
}

// New constructs the meta module; readiness covers pg, ch and redis as configured in deps
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	started := time.Now()
	checks := []metahttp.Check{{Name: "pg"}, {Name: "ch"}, {Name: "redis"}}
	if p, ok := deps.PG.(store.Pinger); ok {
		checks[0].Ping = p.Ping
	}
	if deps.CH != nil {
		checks[1].Ping = deps.CH.Ping
	}
	if deps.RDS != nil {
		rds := deps.RDS
		checks[2].Ping = func(ctx context.Context) error { return rds.Ping(ctx).Err() }
	}

	base := []modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
		modkit.WithRegister(func(r httpkit.Router) {
			metahttp.Register(r, metahttp.Deps{ServiceName: "triggerbot", StartedAt: started, Checks: checks})
		}),
	}
	return &Module{built: modkit.Build(append(base, opts...)...)}
}

// Name implements modkit.Module
func (m *Module) Name() string { return m.built.Name }

// Ports implements modkit.Module
func (m *Module) Ports() any { return nil }

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) { m.built.Mount(r) }
