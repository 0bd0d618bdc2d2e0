// Package service assembles campaign plans
package service

import (
	"context"
	"sort"

	"triggerbot/internal/modkit/repokit"
	"triggerbot/internal/services/plans/domain"
	"triggerbot/internal/services/plans/repo"
)

// Service implements domain.ReaderPort
type Service struct {
	DB     repokit.Queryer
	Binder repokit.Binder[repo.Storage]
}

// New constructs the plan reader
func New(db repokit.Queryer, b repokit.Binder[repo.Storage]) *Service {
	return &Service{DB: db, Binder: b}
}

// Plan loads the items of campaignID and the media of every non-text item
func (s *Service) Plan(ctx context.Context, campaignID int64) ([]domain.Item, error) {
	r := s.Binder.Bind(s.DB)
	items, err := r.GetPlanForCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if !items[i].Type.HasMedia() {
			continue
		}
		media, err := r.GetMediaForItem(ctx, items[i].ID)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(media, func(a, b int) bool { return media[a].SortOrder < media[b].SortOrder })
		items[i].Media = media
	}
	sort.SliceStable(items, func(a, b int) bool { return items[a].SortOrder < items[b].SortOrder })
	return items, nil
}
