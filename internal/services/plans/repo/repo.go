// Package repo provides the postgres plan repository
package repo

import (
	"context"

	"triggerbot/internal/modkit/repokit"
	perr "triggerbot/internal/platform/errors"
	"triggerbot/internal/platform/store"
	"triggerbot/internal/services/plans/domain"
)

type binder struct{}

// NewPG constructs a repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage reads plan items and their media
type Storage interface {
	// GetPlanForCampaign returns items ordered by sort_order, then id; Media is left empty
	GetPlanForCampaign(ctx context.Context, campaignID int64) ([]domain.Item, error)
	// GetMediaForItem returns the item's media ordered by sort_order, then id
	GetMediaForItem(ctx context.Context, itemID int64) ([]domain.MediaRef, error)
}

type pg struct{ q repokit.Queryer }

func (s *pg) GetPlanForCampaign(ctx context.Context, campaignID int64) ([]domain.Item, error) {
	out, err := store.Many(ctx, s.q, func(r store.Row) (domain.Item, error) {
		var it domain.Item
		var typ string
		err := r.Scan(&it.ID, &typ, &it.ContentTemplate, &it.SortOrder, &it.DelaySeconds)
		it.Type = domain.ItemType(typ)
		return it, err
	}, `
		SELECT id, item_type, content_template, sort_order, delay_seconds
		FROM plan_items
		WHERE campaign_id = $1
		ORDER BY sort_order, id`, campaignID)
	if err != nil {
		return nil, perr.FromPostgresf(err, "plan for campaign %d", campaignID)
	}
	return out, nil
}

func (s *pg) GetMediaForItem(ctx context.Context, itemID int64) ([]domain.MediaRef, error) {
	out, err := store.Many(ctx, s.q, func(r store.Row) (domain.MediaRef, error) {
		var m domain.MediaRef
		err := r.Scan(&m.MediaType, &m.Locator, &m.MimeType, &m.SortOrder)
		return m, err
	}, `
		SELECT media_type, locator, mime_type, sort_order
		FROM plan_media
		WHERE item_id = $1
		ORDER BY sort_order, id`, itemID)
	if err != nil {
		return nil, perr.FromPostgresf(err, "media for item %d", itemID)
	}
	return out, nil
}
