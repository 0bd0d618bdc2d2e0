package module

import (
	"time"

	"triggerbot/internal/platform/config"
)

// Options for the orchestrator module
type Options struct {
	Shards     int
	QueueDepth int
	SweepEvery time.Duration
	StaleAfter time.Duration

	// LockTTL bounds a redis admission lock left by a crashed replica
	LockTTL    time.Duration
	LockPrefix string
}

// FromConfig reads CORE_INBOUND_* and CORE_CONVERSATIONS_*
func FromConfig(cfg config.Conf) Options {
	in := cfg.Prefix("CORE_INBOUND_")
	cv := cfg.Prefix("CORE_CONVERSATIONS_")
	return Options{
		Shards:     in.MayInt("SHARDS", 8),
		QueueDepth: in.MayInt("QUEUE_DEPTH", 64),
		LockTTL:    in.MayDuration("LOCK_TTL", 30*time.Second),
		LockPrefix: in.MayString("LOCK_PREFIX", "triggerbot:admit:"),
		SweepEvery: cv.MayDuration("SWEEP_EVERY", time.Minute),
		StaleAfter: cv.MayDuration("STALE_AFTER", 30*time.Minute),
	}
}
