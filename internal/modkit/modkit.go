package modkit

import (
	"triggerbot/internal/modkit/module"
)

// Module is the common surface for service modules
type Module = module.Module

// Builder constructs a Module from shared deps
type Builder func(Deps) Module
