// Package api composes the ops HTTP surface: /metrics and the /api/v1 modules
package api

import (
	"triggerbot/internal/modkit/httpkit"
	"triggerbot/internal/modkit/module"
	"triggerbot/internal/platform/config"
	perr "triggerbot/internal/platform/errors"
	"triggerbot/internal/platform/logger"
	"triggerbot/internal/platform/metrics"
	phttp "triggerbot/internal/platform/net/http"
	"triggerbot/internal/platform/net/middleware"
	"triggerbot/internal/services/api/auth"
)

// Options are the API options
type Options struct {
	Config config.Conf

	// Public modules mount without auth (meta)
	Public []module.Module
	// Protected modules mount behind Auth
	Protected []module.Module
	// Auth guards Protected; nil mounts them open
	Auth middleware.AuthPort
}

// Mount mounts /metrics and the versioned API onto r
// Each module's ports are registered under its name as it mounts
func Mount(r phttp.Router, opt Options) {
	r.Handle("/metrics", metrics.Handler())

	httpkit.MountAPIV1(r, httpkit.CommonStack(StackFromConfig(opt.Config)), func(api httpkit.Router) {
		for _, m := range opt.Public {
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(api)
		}
		httpkit.Protected(api, opt.Auth, func(p httpkit.Router) {
			for _, m := range opt.Protected {
				module.Register(m.Name(), m.Ports())
				m.MountRoutes(p)
			}
		})
	})
}

// StackFromConfig reads CORE_API_CORS_ORIGINS, CORE_API_TIMEOUT and CORE_API_SLOW
func StackFromConfig(cfg config.Conf) httpkit.StackOptions {
	c := cfg.Prefix("CORE_API_")
	return httpkit.StackOptions{
		Origins: c.MayCSV("CORS_ORIGINS", nil),
		Timeout: c.MayDuration("TIMEOUT", 0),
		Slow:    c.MayDuration("SLOW", 0),
	}
}

// AuthFromConfig builds the bearer port from CORE_API_AUTH (jwt|off) and CORE_API_JWT_SECRET
// jwt without a secret is a configuration error; off returns nil and logs a warning
func AuthFromConfig(cfg config.Conf) (middleware.AuthPort, error) {
	c := cfg.Prefix("CORE_API_")
	if c.MayEnum("AUTH", "jwt", "jwt", "off") == "off" {
		logger.Named("api").Warn().Msg("CORE_API_AUTH=off; operator routes are unauthenticated")
		return nil, nil
	}
	secret := c.MayString("JWT_SECRET", "")
	if secret == "" {
		return nil, perr.InvalidArgf("CORE_API_JWT_SECRET is required when CORE_API_AUTH=jwt")
	}
	return httpkit.NewPortFunc(auth.Parser([]byte(secret))), nil
}
