package service

import (
	"context"
	"errors"
	"testing"

	"triggerbot/internal/modkit/repokit"
	"triggerbot/internal/services/plans/domain"
	"triggerbot/internal/services/plans/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	items    []domain.Item
	media    map[int64][]domain.MediaRef
	mediaErr error
	asked    []int64
}

func (f *fakeRepo) GetPlanForCampaign(context.Context, int64) ([]domain.Item, error) {
	return append([]domain.Item(nil), f.items...), nil
}

func (f *fakeRepo) GetMediaForItem(_ context.Context, id int64) ([]domain.MediaRef, error) {
	f.asked = append(f.asked, id)
	return f.media[id], f.mediaErr
}

func newSvc(f *fakeRepo) *Service {
	return New(nil, repokit.BindFunc[repo.Storage](func(repokit.Queryer) repo.Storage { return f }))
}

func str(s string) *string { return &s }

func TestPlan_AttachesMediaInOrder(t *testing.T) {
	f := &fakeRepo{
		items: []domain.Item{
			{ID: 3, Type: domain.ItemGallery, SortOrder: 3},
			{ID: 1, Type: domain.ItemText, SortOrder: 1, ContentTemplate: str("Hola {name}")},
			{ID: 2, Type: domain.ItemImage, SortOrder: 2},
		},
		media: map[int64][]domain.MediaRef{
			2: {{Locator: "/media/a.jpg", SortOrder: 0}},
			3: {{Locator: "g2.jpg", SortOrder: 2}, {Locator: "g1.jpg", SortOrder: 1}},
		},
	}
	items, err := newSvc(f).Plan(context.Background(), 9)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, []int64{1, 2, 3}, []int64{items[0].ID, items[1].ID, items[2].ID})
	assert.Equal(t, []int64{3, 2}, f.asked, "text items never load media")
	assert.Equal(t, "Hola {name}", items[0].Template())
	assert.Equal(t, "", items[1].Template())
	assert.Equal(t, "g1.jpg", items[2].Media[0].Locator)
}

func TestPlan_MediaErrorPropagates(t *testing.T) {
	f := &fakeRepo{items: []domain.Item{{ID: 1, Type: domain.ItemAudio}}, mediaErr: errors.New("timeout")}
	_, err := newSvc(f).Plan(context.Background(), 1)
	assert.EqualError(t, err, "timeout")
}
