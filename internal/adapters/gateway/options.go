package gateway

import "triggerbot/internal/platform/config"

// FromConfig reads CORE_GATEWAY_*; autostart reports whether the session should open at boot
func FromConfig(cfg config.Conf) (o Options, autostart bool) {
	c := cfg.Prefix("CORE_GATEWAY_")
	o = Options{
		URL:         c.MayString("URL", "ws://127.0.0.1:3001/bot"),
		Token:       c.MayString("TOKEN", ""),
		DialTimeout: c.MayDuration("DIAL_TIMEOUT", defaultDialTimeout),
		PongWait:    c.MayDuration("PONG_WAIT", defaultPongWait),
		Buffer:      c.MayInt("BUFFER", defaultBuffer),
	}
	return o, c.MayBool("AUTOSTART", true)
}
