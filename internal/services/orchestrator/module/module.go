// Package module wires the orchestrator over the other service ports
package module

import (
	"triggerbot/internal/modkit"
	"triggerbot/internal/modkit/httpkit"
	campaigns "triggerbot/internal/services/campaigns/domain"
	conversations "triggerbot/internal/services/conversations/domain"
	deliverylog "triggerbot/internal/services/deliverylog/domain"
	dispatch "triggerbot/internal/services/dispatch/domain"
	"triggerbot/internal/services/orchestrator/domain"
	"triggerbot/internal/services/orchestrator/guardrails"
	"triggerbot/internal/services/orchestrator/service"
	plans "triggerbot/internal/services/plans/domain"
	ratelimit "triggerbot/internal/services/ratelimit/domain"
)

// Inputs are the ports the orchestrator drives, taken from the other modules
type Inputs struct {
	Selector   campaigns.SelectorPort
	Limiter    ratelimit.LimiterPort
	Tracker    conversations.TrackerPort
	Plans      plans.ReaderPort
	Log        deliverylog.LogPort
	Dispatcher dispatch.DispatcherPort
}

// Ports exposed by the orchestrator module
type Ports struct {
	Inbound domain.InboundPort
}

// Module implements modkit.Module
type Module struct {
	ports Ports
	lock  string
}

// New constructs the orchestrator; the admission lock lives in redis when deps.RDS is set
func New(deps modkit.Deps, in Inputs) *Module {
	o := FromConfig(deps.Cfg)

	var lock guardrails.Lock = guardrails.NewLocal()
	kind := "local"
	if deps.RDS != nil {
		lock = guardrails.NewRedis(deps.RDS, o.LockPrefix, o.LockTTL)
		kind = "redis"
	}
	deps.Log.Info().Str("lock", kind).Int("shards", o.Shards).Msg("orchestrator configured")

	svc := service.New(service.Deps{
		Selector:   in.Selector,
		Limiter:    in.Limiter,
		Tracker:    in.Tracker,
		Plans:      in.Plans,
		Log:        in.Log,
		Dispatcher: in.Dispatcher,
		Lock:       lock,
	}, service.Config{
		Shards:     o.Shards,
		QueueDepth: o.QueueDepth,
		SweepEvery: o.SweepEvery,
		StaleAfter: o.StaleAfter,
	})
	return &Module{ports: Ports{Inbound: svc}, lock: kind}
}

// Name implements modkit.Module
func (m *Module) Name() string { return "orchestrator" }

// Ports implements modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(httpkit.Router) {}

// LockKind reports which admission lock backs the module: redis or local
func (m *Module) LockKind() string { return m.lock }
