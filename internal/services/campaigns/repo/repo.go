// Package repo provides the postgres campaign repository
package repo

import (
	"context"

	"triggerbot/internal/modkit/repokit"
	perr "triggerbot/internal/platform/errors"
	"triggerbot/internal/platform/store"
	"triggerbot/internal/services/campaigns/domain"
)

type binder struct{}

// NewPG constructs a repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage reads campaigns
type Storage interface {
	// ListActive returns active campaigns by priority descending, then id
	ListActive(ctx context.Context) ([]domain.Campaign, error)
}

type pg struct{ q repokit.Queryer }

func (s *pg) ListActive(ctx context.Context) ([]domain.Campaign, error) {
	out, err := store.Many(ctx, s.q, scanCampaign, `
		SELECT id, name, priority, COALESCE(keyword_rules::text, ''), active
		FROM campaigns
		WHERE active
		ORDER BY priority DESC, id`)
	if err != nil {
		return nil, perr.FromPostgres(err, "list active campaigns")
	}
	return out, nil
}

func scanCampaign(r store.Row) (domain.Campaign, error) {
	var c domain.Campaign
	var rules string
	if err := r.Scan(&c.ID, &c.Name, &c.Priority, &rules, &c.Active); err != nil {
		return c, err
	}
	if rules != "" {
		c.Rules = []byte(rules)
	}
	return c, nil
}
