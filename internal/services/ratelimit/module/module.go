// Package module wires the rate limiter and its sender endpoints
package module

import (
	"triggerbot/internal/modkit"
	"triggerbot/internal/modkit/httpkit"
	"triggerbot/internal/services/ratelimit/domain"
	rlhttp "triggerbot/internal/services/ratelimit/http"
	"triggerbot/internal/services/ratelimit/repo"
	"triggerbot/internal/services/ratelimit/service"
)

// Ports exposed by the ratelimit module
type Ports struct {
	Limiter domain.LimiterPort
	Admin   domain.AdminPort
}

// Module implements modkit.Module
type Module struct {
	built modkit.Built
	ports Ports
}

// New constructs the ratelimit module, mounted under /senders unless opts say otherwise
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	o := FromConfig(deps.Cfg)
	svc := service.New(deps.PG, repo.NewPG(), domain.Limits{PerHour: o.MaxPerHour, PerDay: o.MaxPerDay})

	base := []modkit.Option{
		modkit.WithName("ratelimit"),
		modkit.WithPrefix("/senders"),
		modkit.WithRegister(func(r httpkit.Router) { rlhttp.Register(r, svc) }),
	}
	return &Module{
		built: modkit.Build(append(base, opts...)...),
		ports: Ports{Limiter: svc, Admin: svc},
	}
}

// Name implements modkit.Module
func (m *Module) Name() string { return m.built.Name }

// Ports implements modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) { m.built.Mount(r) }
