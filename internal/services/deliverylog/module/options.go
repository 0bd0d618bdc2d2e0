package module

import "triggerbot/internal/platform/config"

// Sinks
const (
	SinkPG         = "pg"
	SinkClickhouse = "clickhouse"
	SinkBoth       = "both"
)

// Options for the deliverylog module
type Options struct {
	Sink string
}

// FromConfig reads CORE_DELIVERYLOG_*
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CORE_DELIVERYLOG_")
	return Options{Sink: c.MayEnum("SINK", SinkPG, SinkPG, SinkClickhouse, SinkBoth)}
}
