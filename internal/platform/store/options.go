package store

import (
	"fmt"

	"triggerbot/internal/platform/logger"
)

// Backend names one of the optional storage backends
type Backend string

// Backends Open knows about
const (
	Postgres   Backend = "postgres"
	ClickHouse Backend = "clickhouse"
	Redis      Backend = "redis"
)

type settings struct {
	log  logger.Logger
	need []Backend
}

// Option adjusts how Open builds the Store
type Option func(*settings) error

// WithLogger sets the logger handed to subclients
func WithLogger(log logger.Logger) Option {
	return func(s *settings) error {
		s.log = log
		return nil
	}
}

// Require makes Open fail when any of b is disabled in the config
func Require(b ...Backend) Option {
	return func(s *settings) error {
		s.need = append(s.need, b...)
		return nil
	}
}

func (c Config) enabled(b Backend) bool {
	switch b {
	case Postgres:
		return c.PG.Enabled
	case ClickHouse:
		return c.CH.Enabled
	case Redis:
		return c.RDS.Enabled
	}
	return false
}

func (s settings) check(cfg Config) error {
	for _, b := range s.need {
		if !cfg.enabled(b) {
			return fmt.Errorf("store: %s is required but disabled", b)
		}
	}
	return nil
}
