package module

import "triggerbot/internal/platform/config"

// Options for the ratelimit module
type Options struct {
	MaxPerHour int
	MaxPerDay  int
}

// FromConfig reads CORE_RATELIMIT_*
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CORE_RATELIMIT_")
	return Options{
		MaxPerHour: c.MayInt("MAX_PER_HOUR", 3),
		MaxPerDay:  c.MayInt("MAX_PER_DAY", 10),
	}
}
