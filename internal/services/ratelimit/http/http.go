// Package http exposes sender block and limit endpoints
package http

import (
	stdhttp "net/http"

	"triggerbot/internal/modkit/httpkit"
	perr "triggerbot/internal/platform/errors"
	"triggerbot/internal/platform/validate"
	"triggerbot/internal/services/ratelimit/domain"
)

// Register mounts the sender endpoints on r
func Register(r httpkit.Router, admin domain.AdminPort) {
	h := &handlers{admin: admin}

	httpkit.PostJSON[domain.BlockInput](r, "/{sender}/block", h.block)
	httpkit.PostJSON[domain.BanInput](r, "/{sender}/ban", h.ban)
	httpkit.Post(r, "/{sender}/unblock", h.unblock)
	httpkit.Get(r, "/{sender}/limit", h.limit)
}

type handlers struct{ admin domain.AdminPort }

func sender(r *stdhttp.Request) (string, error) {
	s := httpkit.Param(r, "sender")
	if err := validate.Var(s, "sender_id"); err != nil {
		return "", perr.WithField(err, "sender")
	}
	return s, nil
}

func (h *handlers) block(r *stdhttp.Request, in domain.BlockInput) (any, error) {
	s, err := sender(r)
	if err != nil {
		return nil, err
	}
	if err := h.admin.Block(r.Context(), s, in.Reason, in.Hours); err != nil {
		return nil, err
	}
	return h.view(r, s)
}

func (h *handlers) ban(r *stdhttp.Request, in domain.BanInput) (any, error) {
	s, err := sender(r)
	if err != nil {
		return nil, err
	}
	if err := h.admin.BlockPermanently(r.Context(), s, in.Reason); err != nil {
		return nil, err
	}
	return h.view(r, s)
}

func (h *handlers) unblock(r *stdhttp.Request) (any, error) {
	s, err := sender(r)
	if err != nil {
		return nil, err
	}
	if err := h.admin.Unblock(r.Context(), s); err != nil {
		return nil, err
	}
	return h.view(r, s)
}

func (h *handlers) limit(r *stdhttp.Request) (any, error) {
	s, err := sender(r)
	if err != nil {
		return nil, err
	}
	return h.view(r, s)
}

func (h *handlers) view(r *stdhttp.Request, s string) (domain.LimitView, error) {
	rec, ok, d, err := h.admin.Status(r.Context(), s)
	if err != nil {
		return domain.LimitView{}, err
	}
	v := domain.LimitView{SenderID: s, Known: ok, Decision: d}
	if ok {
		v.Record = &rec
	}
	return v, nil
}
