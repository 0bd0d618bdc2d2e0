// Package module defines the contract every service module satisfies and
// the helpers main uses to cross-wire their ports
package module

import (
	phttp "triggerbot/internal/platform/net/http"
)

// Module is what a service's module package returns from New
// Modules with no ops endpoints implement MountRoutes as a no-op
type Module interface {
	Name() string
	Ports() any
	MountRoutes(r phttp.Router)
}
