// Package module mounts the gateway session endpoints
package module

import (
	"triggerbot/internal/modkit"
	"triggerbot/internal/modkit/httpkit"
	sessionhttp "triggerbot/internal/services/api/session/http"
)

// Module implements modkit.Module
type Module struct {
	built modkit.Built
}

// New constructs the session module over gw, mounted under /session
func New(gw sessionhttp.Controller, opts ...modkit.Option) *Module {
	base := []modkit.Option{
		modkit.WithName("session"),
		modkit.WithPrefix("/session"),
		modkit.WithRegister(func(r httpkit.Router) { sessionhttp.Register(r, gw) }),
	}
	return &Module{built: modkit.Build(append(base, opts...)...)}
}

// Name implements modkit.Module
func (m *Module) Name() string { return m.built.Name }

// Ports implements modkit.Module
func (m *Module) Ports() any { return nil }

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) { m.built.Mount(r) }
