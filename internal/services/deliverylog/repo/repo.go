// Package repo provides the delivery log writers
package repo

import (
	"context"

	"triggerbot/internal/modkit/repokit"
	perr "triggerbot/internal/platform/errors"
	"triggerbot/internal/platform/store"
	str "triggerbot/internal/platform/strings"
	"triggerbot/internal/services/deliverylog/domain"

	"github.com/google/uuid"
)

// Writer appends one entry to a sink
type Writer interface {
	Write(ctx context.Context, e domain.Entry) error
	Sink() string
}

type binder struct{}

// NewPG constructs a repo binder for the postgres delivery_log table
func NewPG() repokit.Binder[Writer] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Writer { return &pg{q: q} }

type pg struct{ q repokit.Queryer }

func (w *pg) Sink() string { return "pg" }

func (w *pg) Write(ctx context.Context, e domain.Entry) error {
	_, err := w.q.Exec(ctx, `
		INSERT INTO delivery_log (conversation_id, item_id, status, transport_message_id, error, logged_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ConversationID, e.ItemID, string(e.Status), str.SQLNull(e.TransportMessageID), str.SQLNull(e.Error), e.LoggedAt)
	return perr.FromPostgres(err, "write delivery log")
}

// Table is the clickhouse table entries are appended to
const Table = "delivery_events"

// NewCH constructs a writer for the clickhouse delivery_events table
func NewCH(c store.Clickhouse) Writer { return &ch{c: c} }

type ch struct{ c store.Clickhouse }

func (w *ch) Sink() string { return "clickhouse" }

func (w *ch) Write(ctx context.Context, e domain.Entry) error {
	id, err := uuid.Parse(e.ConversationID)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "conversation id %q", e.ConversationID)
	}
	row := []any{id, e.ItemID, string(e.Status), e.TransportMessageID, e.Error, e.LoggedAt}
	if err := w.c.Insert(ctx, Table, [][]any{row}); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "append delivery event")
	}
	return nil
}
