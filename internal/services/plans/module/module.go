// Package module wires the plan reader
package module

import (
	"triggerbot/internal/modkit"
	"triggerbot/internal/modkit/httpkit"
	"triggerbot/internal/services/plans/domain"
	"triggerbot/internal/services/plans/repo"
	"triggerbot/internal/services/plans/service"
)

// Ports exposed by the plans module
type Ports struct {
	Reader domain.ReaderPort
}

// Module implements modkit.Module
type Module struct{ ports Ports }

// New constructs the plans module
func New(deps modkit.Deps) *Module {
	return &Module{ports: Ports{Reader: service.New(deps.PG, repo.NewPG())}}
}

// Name implements modkit.Module
func (m *Module) Name() string { return "plans" }

// Ports implements modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(httpkit.Router) {}
