// Package module wires the dispatcher to media retrieval and a transport
package module

import (
	"triggerbot/internal/adapters/media"
	"triggerbot/internal/core/version"
	"triggerbot/internal/modkit"
	"triggerbot/internal/modkit/httpkit"
	"triggerbot/internal/services/dispatch/domain"
	"triggerbot/internal/services/dispatch/service"
)

// Ports exposed by the dispatch module
type Ports struct {
	Dispatcher domain.DispatcherPort
}

// Module implements modkit.Module
type Module struct {
	ports Ports
	opts  Options
}

// New constructs the dispatch module sending through t
func New(deps modkit.Deps, t domain.Transport) *Module {
	o := FromConfig(deps.Cfg)
	fetch := media.NewFetcher(media.Options{
		Timeout:   o.MediaTimeout,
		UserAgent: "triggerbot/" + version.Info().Version,
	})
	svc := service.New(t, fetch, media.NewResolver(o.MediaBaseURL, o.LegacyPrefix, o.PublicPrefix), service.Config{
		GalleryGap:   o.GalleryGap,
		SendTimeout:  o.SendTimeout,
		DocumentName: o.DocumentName,
	})
	if o.MediaBaseURL == "" {
		deps.Log.Warn().Msg("CORE_DISPATCH_MEDIA_BASE_URL unset; relative media locators are fetched as stored")
	}
	return &Module{ports: Ports{Dispatcher: svc}, opts: o}
}

// Name implements modkit.Module
func (m *Module) Name() string { return "dispatch" }

// Ports implements modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(httpkit.Router) {}

// Options returns the resolved configuration
func (m *Module) Options() Options { return m.opts }
