package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	perr "triggerbot/internal/platform/errors"
	"triggerbot/internal/services/deliverylog/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCH struct {
	table string
	rows  [][]any
	err   error
}

func (f *fakeCH) Insert(_ context.Context, table string, rows [][]any) error {
	f.table, f.rows = table, rows
	return f.err
}
func (f *fakeCH) Exec(context.Context, string) error { return nil }
func (f *fakeCH) Ping(context.Context) error         { return nil }
func (f *fakeCH) Close() error                       { return nil }

func TestCHWriter(t *testing.T) {
	at := time.Date(2026, 10, 15, 11, 0, 0, 0, time.UTC)
	id := uuid.New()
	f := &fakeCH{}
	w := NewCH(f)
	assert.Equal(t, "clickhouse", w.Sink())

	require.NoError(t, w.Write(context.Background(), domain.Entry{
		ConversationID: id.String(), ItemID: 7, Status: domain.StatusSent, TransportMessageID: "m1", LoggedAt: at,
	}))
	assert.Equal(t, Table, f.table)
	assert.Equal(t, [][]any{{id, int64(7), "sent", "m1", "", at}}, f.rows)

	err := w.Write(context.Background(), domain.Entry{ConversationID: "nope"})
	assert.True(t, perr.IsCode(err, perr.ErrorCodeInvalidArgument))

	f.err = errors.New("broken pipe")
	err = w.Write(context.Background(), domain.Entry{ConversationID: id.String()})
	assert.True(t, perr.IsCode(err, perr.ErrorCodeUnavailable))
}
