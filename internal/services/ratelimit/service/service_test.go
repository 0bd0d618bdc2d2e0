package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"triggerbot/internal/modkit/repokit"
	ptime "triggerbot/internal/platform/time"
	"triggerbot/internal/services/ratelimit/domain"
	"triggerbot/internal/services/ratelimit/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

type fakeDB struct{ txs int }

func (f *fakeDB) Exec(context.Context, string, ...any) (repokit.CommandTag, error) { return nil, nil }
func (f *fakeDB) Query(context.Context, string, ...any) (repokit.Rows, error)      { return nil, nil }
func (f *fakeDB) QueryRow(context.Context, string, ...any) repokit.Row             { return nil }
func (f *fakeDB) Tx(_ context.Context, fn func(repokit.Queryer) error) error {
	f.txs++
	return fn(f)
}

type memRepo struct {
	recs    map[string]domain.Record
	banned  map[string]string
	err     error
	cleared []string
}

func newMem() *memRepo {
	return &memRepo{recs: map[string]domain.Record{}, banned: map[string]string{}}
}

func (m *memRepo) GetRecord(_ context.Context, s string) (domain.Record, bool, error) {
	if m.err != nil {
		return domain.Record{}, false, m.err
	}
	r, ok := m.recs[s]
	return r, ok, nil
}

func (m *memRepo) UpsertOnTrigger(_ context.Context, s string, at time.Time) (domain.Record, error) {
	if m.err != nil {
		return domain.Record{}, m.err
	}
	r := m.recs[s]
	r.SenderID = s
	r = domain.Advance(r, at)
	m.recs[s] = r
	return r, nil
}

func (m *memRepo) SetBlock(_ context.Context, s, reason string, until *time.Time) error {
	r := m.recs[s]
	r.SenderID, r.IsBlocked, r.BlockedUntil, r.BlockReason = s, true, until, reason
	m.recs[s] = r
	return nil
}

func (m *memRepo) ClearBlock(_ context.Context, s string) error {
	m.cleared = append(m.cleared, s)
	if r, ok := m.recs[s]; ok {
		r.IsBlocked, r.BlockedUntil, r.BlockedPermanently, r.BlockReason = false, nil, false, ""
		m.recs[s] = r
	}
	return nil
}

func (m *memRepo) IsPermanentlyBlocked(_ context.Context, s string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.banned[s]
	return ok, nil
}

func (m *memRepo) AddPermanentBlock(_ context.Context, s, reason string) error {
	m.banned[s] = reason
	r := m.recs[s]
	r.SenderID, r.BlockedPermanently, r.BlockReason = s, true, reason
	m.recs[s] = r
	return nil
}

func (m *memRepo) RemovePermanentBlock(_ context.Context, s string) error {
	delete(m.banned, s)
	return nil
}

func newSvc(m *memRepo) (*Service, *fakeDB) {
	db := &fakeDB{}
	b := repokit.BindFunc[repo.Storage](func(repokit.Queryer) repo.Storage { return m })
	s := New(db, b, domain.Limits{})
	s.Now = ptime.Fixed(now)
	return s, db
}

func at(d time.Duration) *time.Time {
	t := now.Add(d)
	return &t
}

const alice = "51999000111@c.us"

func TestNew_DefaultLimits(t *testing.T) {
	s, _ := newSvc(newMem())
	assert.Equal(t, domain.Limits{PerHour: 3, PerDay: 10}, s.Limits)
}

func TestCheck_HourLimitBoundary(t *testing.T) {
	m := newMem()
	s, _ := newSvc(m)

	m.recs[alice] = domain.Record{SenderID: alice, HourCount: 2, DayCount: 2, LastTriggerAt: at(-10 * time.Minute)}
	assert.Equal(t, domain.Decision{Allowed: true, Reason: domain.ReasonOK}, s.Check(context.Background(), alice))

	m.recs[alice] = domain.Record{SenderID: alice, HourCount: 3, DayCount: 3, LastTriggerAt: at(-10 * time.Minute)}
	assert.Equal(t, domain.Decision{Allowed: false, Reason: domain.ReasonHourLimit}, s.Check(context.Background(), alice))
}

func TestCheck_NewUserAndPermanent(t *testing.T) {
	m := newMem()
	s, _ := newSvc(m)
	ctx := context.Background()

	assert.Equal(t, domain.ReasonNewUser, s.Check(ctx, alice).Reason)

	m.banned[alice] = "spam"
	d := s.Check(ctx, alice)
	assert.False(t, d.Allowed)
	assert.Equal(t, domain.ReasonBlockedPermanent, d.Reason)

	delete(m.banned, alice)
	m.recs[alice] = domain.Record{SenderID: alice, BlockedPermanently: true}
	assert.Equal(t, domain.ReasonBlockedPermanent, s.Check(ctx, alice).Reason)
}

func TestCheck_AutoUnblock(t *testing.T) {
	m := newMem()
	s, _ := newSvc(m)
	ctx := context.Background()

	m.recs[alice] = domain.Record{SenderID: alice, IsBlocked: true, BlockedUntil: at(time.Hour), BlockReason: "abuse"}
	assert.Equal(t, domain.ReasonBlockedTemporary, s.Check(ctx, alice).Reason)
	assert.Empty(t, m.cleared)

	m.recs[alice] = domain.Record{SenderID: alice, IsBlocked: true, BlockedUntil: at(-time.Minute), BlockReason: "abuse"}
	d := s.Check(ctx, alice)
	assert.True(t, d.Allowed)
	assert.Equal(t, domain.ReasonUnblocked, d.Reason)
	assert.Equal(t, []string{alice}, m.cleared)
	assert.False(t, m.recs[alice].IsBlocked)

	assert.Equal(t, domain.ReasonOK, s.Check(ctx, alice).Reason)
}

func TestCheck_FailsOpen(t *testing.T) {
	m := newMem()
	m.err = errors.New("connection refused")
	s, _ := newSvc(m)
	assert.Equal(t, domain.Decision{Allowed: true, Reason: domain.ReasonErrorCheck}, s.Check(context.Background(), alice))
}

func TestUpdate_RunsInTx(t *testing.T) {
	m := newMem()
	s, db := newSvc(m)
	ctx := context.Background()

	require.NoError(t, s.Update(ctx, alice))
	require.NoError(t, s.Update(ctx, alice))
	assert.Equal(t, 2, db.txs)

	r := m.recs[alice]
	assert.Equal(t, 2, r.HourCount)
	assert.Equal(t, 2, r.DayCount)
	assert.Equal(t, int64(2), r.TotalCount)
	assert.Equal(t, now, *r.LastTriggerAt)

	m.err = errors.New("deadlock")
	assert.Error(t, s.Update(ctx, alice))
}

func TestBlockAndUnblock(t *testing.T) {
	m := newMem()
	s, _ := newSvc(m)
	ctx := context.Background()

	h := 2
	require.NoError(t, s.Block(ctx, alice, " flood ", &h))
	r := m.recs[alice]
	assert.True(t, r.IsBlocked)
	assert.Equal(t, "flood", r.BlockReason)
	assert.Equal(t, now.Add(2*time.Hour), *r.BlockedUntil)

	require.NoError(t, s.Block(ctx, alice, "manual", nil))
	assert.Nil(t, m.recs[alice].BlockedUntil)
	assert.Equal(t, domain.ReasonBlockedTemporary, s.Check(ctx, alice).Reason)

	zero := 0
	assert.Error(t, s.Block(ctx, alice, "x", &zero))

	require.NoError(t, s.BlockPermanently(ctx, alice, "spam"))
	assert.Equal(t, domain.ReasonBlockedPermanent, s.Check(ctx, alice).Reason)

	require.NoError(t, s.Unblock(ctx, alice))
	assert.Empty(t, m.banned)
	assert.True(t, s.Check(ctx, alice).Allowed)
}

func TestStatus_HasNoSideEffects(t *testing.T) {
	m := newMem()
	s, _ := newSvc(m)
	ctx := context.Background()

	_, ok, d, err := s.Status(ctx, alice)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, domain.ReasonNewUser, d.Reason)

	m.recs[alice] = domain.Record{SenderID: alice, IsBlocked: true, BlockedUntil: at(-time.Minute)}
	rec, ok, d, err := s.Status(ctx, alice)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, rec.IsBlocked)
	assert.Equal(t, domain.ReasonUnblocked, d.Reason)
	assert.Empty(t, m.cleared)

	m.banned[alice] = "spam"
	rec, _, d, err = s.Status(ctx, alice)
	require.NoError(t, err)
	assert.True(t, rec.BlockedPermanently)
	assert.False(t, d.Allowed)
}
