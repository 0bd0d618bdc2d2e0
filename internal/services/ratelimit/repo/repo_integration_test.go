//go:build integration_pg

package repo

import (
	"context"
	"sync"
	"testing"
	"time"

	"triggerbot/internal/modkit/repokit"
	"triggerbot/internal/platform/testkit/pgtest"
	"triggerbot/internal/services/ratelimit/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertOnTrigger_ConcurrentFirstTriggers(t *testing.T) {
	db := pgtest.Start(t)
	ctx := context.Background()
	now := time.Now().UTC()

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := db.Tx(ctx, func(q repokit.Queryer) error {
				_, err := NewPG().Bind(q).UpsertOnTrigger(ctx, "51999000111", now)
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rec, ok, err := NewPG().Bind(db).GetRecord(ctx, "51999000111")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(n), rec.TotalCount)
	assert.Equal(t, n, rec.HourCount)
	assert.Equal(t, n, rec.DayCount)
	require.NotNil(t, rec.LastTriggerAt)
}

func TestUpsertOnTrigger_WindowReset(t *testing.T) {
	db := pgtest.Start(t)
	ctx := context.Background()
	start := time.Now().UTC().Add(-3 * time.Hour)

	upsert := func(at time.Time) domain.Record {
		var rec domain.Record
		require.NoError(t, db.Tx(ctx, func(q repokit.Queryer) error {
			var err error
			rec, err = NewPG().Bind(q).UpsertOnTrigger(ctx, "51900000001", at)
			return err
		}))
		return rec
	}
	upsert(start)
	upsert(start.Add(time.Minute))
	rec := upsert(start.Add(2 * time.Hour))

	assert.Equal(t, 1, rec.HourCount, "hour window reset")
	assert.Equal(t, 3, rec.DayCount)
	assert.Equal(t, int64(3), rec.TotalCount)
}

func TestBlocks(t *testing.T) {
	db := pgtest.Start(t)
	ctx := context.Background()
	st := NewPG().Bind(db)
	until := time.Now().UTC().Add(time.Hour).Truncate(time.Microsecond)

	require.NoError(t, st.SetBlock(ctx, "51900000002", "flood", &until))
	rec, ok, err := st.GetRecord(ctx, "51900000002")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, rec.IsBlocked)
	require.NotNil(t, rec.BlockedUntil)
	assert.True(t, until.Equal(*rec.BlockedUntil))
	assert.Equal(t, "flood", rec.BlockReason)

	require.NoError(t, st.AddPermanentBlock(ctx, "51900000002", "spam"))
	banned, err := st.IsPermanentlyBlocked(ctx, "51900000002")
	require.NoError(t, err)
	assert.True(t, banned)
	rec, _, _ = st.GetRecord(ctx, "51900000002")
	assert.True(t, rec.BlockedPermanently)

	require.NoError(t, st.RemovePermanentBlock(ctx, "51900000002"))
	require.NoError(t, st.ClearBlock(ctx, "51900000002"))
	banned, err = st.IsPermanentlyBlocked(ctx, "51900000002")
	require.NoError(t, err)
	assert.False(t, banned)
	rec, _, _ = st.GetRecord(ctx, "51900000002")
	assert.False(t, rec.IsBlocked)
	assert.False(t, rec.BlockedPermanently)
	assert.Nil(t, rec.BlockedUntil)
}
