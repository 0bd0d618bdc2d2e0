// Package module wires the delivery log to its configured sinks
package module

import (
	"triggerbot/internal/modkit"
	"triggerbot/internal/modkit/httpkit"
	"triggerbot/internal/services/deliverylog/domain"
	"triggerbot/internal/services/deliverylog/repo"
	"triggerbot/internal/services/deliverylog/service"
)

// Ports exposed by the deliverylog module
type Ports struct {
	Log domain.LogPort
}

// Module implements modkit.Module
type Module struct {
	ports Ports
	sinks []string
}

// New constructs the delivery log
// A clickhouse sink without a clickhouse connection falls back to postgres
func New(deps modkit.Deps) *Module {
	o := FromConfig(deps.Cfg)
	var ws []repo.Writer
	if (o.Sink == SinkClickhouse || o.Sink == SinkBoth) && deps.CH != nil {
		ws = append(ws, repo.NewCH(deps.CH))
	}
	if (o.Sink == SinkPG || o.Sink == SinkBoth || len(ws) == 0) && deps.PG != nil {
		ws = append(ws, repo.NewPG().Bind(deps.PG))
	}
	if len(ws) == 0 || (o.Sink != SinkPG && deps.CH == nil) {
		deps.Log.Warn().Str("sink", o.Sink).Int("writers", len(ws)).Msg("delivery log running degraded")
	}

	m := &Module{ports: Ports{Log: service.New(ws...)}}
	for _, w := range ws {
		m.sinks = append(m.sinks, w.Sink())
	}
	return m
}

// Sinks lists the active writers by name
func (m *Module) Sinks() []string { return m.sinks }

// Name implements modkit.Module
func (m *Module) Name() string { return "deliverylog" }

// Ports implements modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(httpkit.Router) {}
