package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"triggerbot/internal/modkit/repokit"
	ptime "triggerbot/internal/platform/time"
	"triggerbot/internal/services/conversations/domain"
	"triggerbot/internal/services/conversations/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)

// memRepo mirrors the postgres guards: one active row per sender, writes only touch active rows
type memRepo struct {
	rows map[string]*domain.Conversation
	err  error
}

func (m *memRepo) Claim(_ context.Context, id string, c domain.NewConversation, at time.Time) error {
	if m.err != nil {
		return m.err
	}
	for _, r := range m.rows {
		if r.SenderID == c.SenderID && r.Status.Active() {
			return domain.ErrActiveConversation
		}
	}
	m.rows[id] = &domain.Conversation{
		ID: id, SenderID: c.SenderID, CampaignID: c.CampaignID, TriggerText: c.TriggerText,
		MatchedKeyword: c.MatchedKeyword, MatchType: c.MatchType, Status: domain.StatusInitiated,
		StartedAt: at, LastActivityAt: at,
	}
	return nil
}

func (m *memRepo) GetActive(_ context.Context, sender string) (domain.Conversation, bool, error) {
	for _, r := range m.rows {
		if r.SenderID == sender && r.Status.Active() {
			return *r, true, nil
		}
	}
	return domain.Conversation{}, false, m.err
}

func (m *memRepo) IncrementSent(_ context.Context, id string, at time.Time) (bool, error) {
	r, ok := m.rows[id]
	if !ok || !r.Status.Active() {
		return false, m.err
	}
	r.MessagesSent++
	r.Status, r.LastActivityAt = domain.StatusInProgress, at
	return true, nil
}

func (m *memRepo) Touch(_ context.Context, id string, at time.Time) (bool, error) {
	r, ok := m.rows[id]
	if !ok || !r.Status.Active() {
		return false, m.err
	}
	r.LastActivityAt = at
	return true, nil
}

func (m *memRepo) SetStatus(_ context.Context, id string, st domain.Status, reason *string, at time.Time) (bool, error) {
	r, ok := m.rows[id]
	if !ok || !r.Status.Active() {
		return false, m.err
	}
	r.Status, r.FailureReason, r.EndedAt = st, reason, &at
	return true, nil
}

func (m *memRepo) ExpireStale(_ context.Context, before time.Time, reason string, at time.Time) (int64, error) {
	var n int64
	for _, r := range m.rows {
		if r.Status.Active() && r.LastActivityAt.Before(before) {
			r.Status, r.FailureReason, r.EndedAt = domain.StatusCancelled, &reason, &at
			n++
		}
	}
	return n, nil
}

func newSvc() (*Service, *memRepo) {
	m := &memRepo{rows: map[string]*domain.Conversation{}}
	s := New(nil, repokit.BindFunc[repo.Storage](func(repokit.Queryer) repo.Storage { return m }))
	s.Now = ptime.Fixed(now)
	n := 0
	s.NewID = func() string {
		n++
		return []string{"", "c-1", "c-2", "c-3", "c-4"}[n]
	}
	return s, m
}

var claim = domain.NewConversation{SenderID: "51999000111", CampaignID: 4, TriggerText: "info tour", MatchedKeyword: "tour", MatchType: "KEYWORD"}

func TestClaim_OneActivePerSender(t *testing.T) {
	s, _ := newSvc()
	ctx := context.Background()

	id, err := s.Claim(ctx, claim)
	require.NoError(t, err)
	assert.Equal(t, "c-1", id)

	_, err = s.Claim(ctx, claim)
	assert.True(t, errors.Is(err, domain.ErrActiveConversation))

	c, ok, err := s.HasActive(ctx, claim.SenderID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.StatusInitiated, c.Status)

	require.NoError(t, s.Complete(ctx, id))
	id2, err := s.Claim(ctx, claim)
	require.NoError(t, err)
	assert.Equal(t, "c-3", id2)
}

func TestLifecycle(t *testing.T) {
	s, m := newSvc()
	ctx := context.Background()

	id, err := s.Claim(ctx, claim)
	require.NoError(t, err)
	require.NoError(t, s.IncrementSent(ctx, id))
	require.NoError(t, s.IncrementSent(ctx, id))
	assert.Equal(t, domain.StatusInProgress, m.rows[id].Status)
	assert.Equal(t, 2, m.rows[id].MessagesSent)

	require.NoError(t, s.Fail(ctx, id, "transport closed"))
	assert.Equal(t, domain.StatusFailed, m.rows[id].Status)
	assert.Equal(t, "transport closed", *m.rows[id].FailureReason)
	assert.Equal(t, now, *m.rows[id].EndedAt)

	// terminal is final
	assert.ErrorIs(t, s.Complete(ctx, id), domain.ErrNotActive)
	assert.ErrorIs(t, s.Cancel(ctx, id, "stop"), domain.ErrNotActive)
	assert.ErrorIs(t, s.IncrementSent(ctx, id), domain.ErrNotActive)
	assert.Equal(t, domain.StatusFailed, m.rows[id].Status)
	assert.Equal(t, 2, m.rows[id].MessagesSent)
}

func TestExpireStale(t *testing.T) {
	s, m := newSvc()
	ctx := context.Background()

	old, err := s.Claim(ctx, claim)
	require.NoError(t, err)
	m.rows[old].StartedAt = now.Add(-45 * time.Minute)
	m.rows[old].LastActivityAt = now.Add(-45 * time.Minute)

	fresh := claim
	fresh.SenderID = "51999000222"
	id, err := s.Claim(ctx, fresh)
	require.NoError(t, err)

	n, err := s.ExpireStale(ctx, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, domain.StatusCancelled, m.rows[old].Status)
	assert.Equal(t, domain.StatusInitiated, m.rows[id].Status)

	_, ok, err := s.HasActive(ctx, claim.SenderID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreErrorsPropagate(t *testing.T) {
	s, m := newSvc()
	m.err = errors.New("pg down")
	_, err := s.Claim(context.Background(), claim)
	assert.EqualError(t, err, "pg down")
}

func TestExpireStale_SparesLongRunningDispatch(t *testing.T) {
	s, m := newSvc()
	ctx := context.Background()

	id, err := s.Claim(ctx, claim)
	require.NoError(t, err)
	// started an hour ago, but items are still going out
	m.rows[id].StartedAt = now.Add(-time.Hour)
	m.rows[id].LastActivityAt = now.Add(-time.Hour)
	require.NoError(t, s.Touch(ctx, id))

	n, err := s.ExpireStale(ctx, 30*time.Minute)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, domain.StatusInitiated, m.rows[id].Status)
	require.NoError(t, s.IncrementSent(ctx, id))

	// once it goes quiet past the horizon it is swept
	m.rows[id].LastActivityAt = now.Add(-31 * time.Minute)
	n, err = s.ExpireStale(ctx, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.ErrorIs(t, s.Touch(ctx, id), domain.ErrNotActive)
}

func TestFail_BoundsReason(t *testing.T) {
	s, m := newSvc()
	ctx := context.Background()
	id, err := s.Claim(ctx, claim)
	require.NoError(t, err)

	require.NoError(t, s.Fail(ctx, id, "send: "+strings.Repeat("é", 400)))
	got := *m.rows[id].FailureReason
	assert.LessOrEqual(t, len(got), maxReason)
	assert.True(t, strings.HasPrefix(got, "send: é"))
}
