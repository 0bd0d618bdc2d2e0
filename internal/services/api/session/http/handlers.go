// Package http exposes the chat gateway session to operators
package http

import (
	"context"
	"net/http"

	"triggerbot/internal/adapters/gateway"
	"triggerbot/internal/modkit/httpkit"
	"triggerbot/internal/platform/logger"
)

// Controller is the gateway surface the endpoints drive
type Controller interface {
	Start(ctx context.Context) error
	Stop() error
	Status() gateway.Status
}

type handlers struct {
	gw Controller
}

// Register mounts start, stop and status
func Register(r httpkit.Router, gw Controller) {
	h := &handlers{gw: gw}
	httpkit.Post(r, "/start", h.start)
	httpkit.Post(r, "/stop", h.stop)
	httpkit.Get(r, "/status", h.status)
}

func (h *handlers) start(r *http.Request) (any, error) {
	if err := h.gw.Start(r.Context()); err != nil {
		logger.C(r.Context()).Warn().Err(err).Msg("gateway start failed")
		return nil, err
	}
	return h.gw.Status(), nil
}

func (h *handlers) stop(r *http.Request) (any, error) {
	if err := h.gw.Stop(); err != nil {
		return nil, err
	}
	logger.C(r.Context()).Info().Msg("gateway stopped by operator")
	return h.gw.Status(), nil
}

func (h *handlers) status(_ *http.Request) (any, error) {
	return h.gw.Status(), nil
}
