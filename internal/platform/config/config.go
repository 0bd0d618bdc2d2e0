// Package config reads application configuration from environment variables
package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"triggerbot/internal/platform/logger"
)

// Conf is a namespaced view over environment variables (e.g. "CORE_DISPATCH_")
// New() reads globally; Prefix narrows the view for a module
type Conf struct{ prefix string }

// New creates a root Conf (no prefix)
func New() Conf { return Conf{} }

// Prefix creates a child Conf with an additional prefix
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) key(k string) string { return c.prefix + k }

func (c Conf) lookup(k string) string { return strings.TrimSpace(os.Getenv(c.key(k))) }

// mayParse returns def for an empty value and logs+returns def for an unparsable one
func mayParse[T any](c Conf, k string, def T, kind string, parse func(string) (T, error)) T {
	s := c.lookup(k)
	if s == "" {
		return def
	}
	v, err := parse(s)
	if err != nil {
		logger.Get().Warn().Str("key", c.key(k)).Str("value", s).Interface("default", def).
			Msgf("invalid %s; using default", kind)
		return def
	}
	return v
}

// mustParse panics for an empty or unparsable value
func mustParse[T any](c Conf, k, kind string, parse func(string) (T, error)) T {
	s := c.MustString(k)
	v, err := parse(s)
	if err != nil {
		logger.Get().Panic().Str("key", c.key(k)).Str("value", s).Msgf("invalid %s value", kind)
	}
	return v
}

// MustString panics if the key is missing or empty
func (c Conf) MustString(key string) string {
	v := c.lookup(key)
	if v == "" {
		logger.Get().Panic().Str("key", c.key(key)).Msg("missing required env")
	}
	return v
}

// MustInt panics if the key is missing or not an int
func (c Conf) MustInt(key string) int { return mustParse(c, key, "int", strconv.Atoi) }

// MustDuration panics if the key is missing or not a duration (250ms, 2s, 1h)
func (c Conf) MustDuration(key string) time.Duration {
	return mustParse(c, key, "duration", time.ParseDuration)
}

// MustPort returns an addr like ":4000" after validating 1..65535
func (c Conf) MustPort(key string) string {
	p := c.MustInt(key)
	if p < 1 || p > 65535 {
		logger.Get().Panic().Str("key", c.key(key)).Int("value", p).Msg("invalid TCP port; expected 1..65535")
	}
	return ":" + strconv.Itoa(p)
}

// Require panics unless every key is present
func (c Conf) Require(keys ...string) {
	for _, k := range keys {
		_ = c.MustString(k)
	}
}

// MayString returns the value or def if missing
func (c Conf) MayString(key, def string) string {
	if v := c.lookup(key); v != "" {
		return v
	}
	return def
}

// MayInt returns the value or def if missing or invalid
func (c Conf) MayInt(key string, def int) int { return mayParse(c, key, def, "int", strconv.Atoi) }

// MayBool returns the value or def if missing or invalid
func (c Conf) MayBool(key string, def bool) bool {
	return mayParse(c, key, def, "bool", strconv.ParseBool)
}

// MayDuration returns the value or def if missing or invalid
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	return mayParse(c, key, def, "duration", time.ParseDuration)
}

// MayURL returns an absolute URL or nil when missing; relative or unparsable values are logged and ignored
func (c Conf) MayURL(key string) *url.URL {
	return mayParse(c, key, (*url.URL)(nil), "absolute url", func(s string) (*url.URL, error) {
		u, err := url.Parse(s)
		if err == nil && !u.IsAbs() {
			err = strconv.ErrSyntax
		}
		return u, err
	})
}

// MayCSV splits a comma-separated value; def if missing or all parts are blank
func (c Conf) MayCSV(key string, def []string) []string {
	var out []string
	for _, p := range strings.Split(c.lookup(key), ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// MayEnum returns one of allowed (case-insensitive) or def; panics on anything else
func (c Conf) MayEnum(key, def string, allowed ...string) string {
	v := c.MayString(key, def)
	if v == "" {
		return v
	}
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return strings.ToLower(v)
		}
	}
	logger.Get().Panic().Str("key", c.key(key)).Str("value", v).Strs("allowed", allowed).Msg("invalid enum value")
	return ""
}
