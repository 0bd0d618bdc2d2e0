// Package module wires the campaign selector
package module

import (
	"triggerbot/internal/modkit"
	"triggerbot/internal/modkit/httpkit"
	"triggerbot/internal/services/campaigns/domain"
	"triggerbot/internal/services/campaigns/repo"
	"triggerbot/internal/services/campaigns/service"
)

// Ports exposed by the campaigns module
type Ports struct {
	Selector domain.SelectorPort
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the campaigns module
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)
	svc := service.New(deps.PG, repo.NewPG(), service.Config{CacheRules: opts.CacheRules})
	return &Module{deps: deps, ports: Ports{Selector: svc}}
}

// Name implements modkit.Module
func (m *Module) Name() string { return "campaigns" }

// Ports implements modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes implements modkit.Module; campaigns are authored elsewhere
func (m *Module) MountRoutes(httpkit.Router) {}
