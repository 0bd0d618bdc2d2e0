package module

import "triggerbot/internal/platform/config"

// Options for the campaigns module
type Options struct {
	CacheRules bool
}

// FromConfig reads CORE_CAMPAIGNS_*
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CORE_CAMPAIGNS_")
	return Options{CacheRules: c.MayBool("CACHE_RULES", true)}
}
