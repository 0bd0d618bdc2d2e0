// Package module wires the conversation tracker
package module

import (
	"triggerbot/internal/modkit"
	"triggerbot/internal/modkit/httpkit"
	"triggerbot/internal/services/conversations/domain"
	"triggerbot/internal/services/conversations/repo"
	"triggerbot/internal/services/conversations/service"
)

// Ports exposed by the conversations module
type Ports struct {
	Tracker domain.TrackerPort
}

// Module implements modkit.Module
type Module struct {
	ports Ports
}

// New constructs the conversations module
func New(deps modkit.Deps) *Module {
	return &Module{ports: Ports{Tracker: service.New(deps.PG, repo.NewPG())}}
}

// Name implements modkit.Module
func (m *Module) Name() string { return "conversations" }

// Ports implements modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(httpkit.Router) {}
