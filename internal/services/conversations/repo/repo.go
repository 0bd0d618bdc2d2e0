// Package repo provides the postgres conversation repository
package repo

import (
	"context"
	"time"

	"triggerbot/internal/modkit/repokit"
	perr "triggerbot/internal/platform/errors"
	"triggerbot/internal/platform/store"
	"triggerbot/internal/services/conversations/domain"
)

type binder struct{}

// NewPG constructs a repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage persists conversations
// Every status write only touches active rows; ok is false when the row had already ended
type Storage interface {
	// Claim inserts an initiated row; a live row for the sender fails with ErrActiveConversation
	Claim(ctx context.Context, id string, c domain.NewConversation, at time.Time) error
	GetActive(ctx context.Context, sender string) (domain.Conversation, bool, error)
	IncrementSent(ctx context.Context, id string, at time.Time) (bool, error)
	Touch(ctx context.Context, id string, at time.Time) (bool, error)
	SetStatus(ctx context.Context, id string, st domain.Status, reason *string, at time.Time) (bool, error)
	// ExpireStale cancels active rows whose last activity is before before
	ExpireStale(ctx context.Context, before time.Time, reason string, at time.Time) (int64, error)
}

type pg struct{ q repokit.Queryer }

const activeStatuses = `('initiated', 'in_progress')`

func (s *pg) Claim(ctx context.Context, id string, c domain.NewConversation, at time.Time) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO conversations
			(id, sender_id, campaign_id, origin_line, trigger_text, matched_keyword, match_type, status, started_at, last_activity_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'initiated', $8, $8)`,
		id, c.SenderID, c.CampaignID, c.OriginLine, c.TriggerText, c.MatchedKeyword, c.MatchType, at)
	if err == nil {
		return nil
	}
	if perr.IsDuplicateKey(err) {
		return domain.ErrActiveConversation
	}
	return perr.FromPostgres(err, "claim conversation")
}

func (s *pg) GetActive(ctx context.Context, sender string) (domain.Conversation, bool, error) {
	c, err := store.One(ctx, s.q, scanConversation, `
		SELECT id::text, sender_id, campaign_id, origin_line, trigger_text, matched_keyword, match_type,
		       status, messages_sent, failure_reason, started_at, last_activity_at, ended_at
		FROM conversations
		WHERE sender_id = $1 AND status IN `+activeStatuses+`
		ORDER BY started_at DESC
		LIMIT 1`, sender)
	switch {
	case err == nil:
		return c, true, nil
	case perr.IsCode(err, perr.ErrorCodeNotFound):
		return domain.Conversation{}, false, nil
	default:
		return domain.Conversation{}, false, perr.FromPostgres(err, "get active conversation")
	}
}

func (s *pg) IncrementSent(ctx context.Context, id string, at time.Time) (bool, error) {
	tag, err := s.q.Exec(ctx, `
		UPDATE conversations
		SET messages_sent = messages_sent + 1, status = 'in_progress', last_activity_at = $2
		WHERE id = $1 AND status IN `+activeStatuses, id, at)
	if err != nil {
		return false, perr.FromPostgres(err, "increment sent")
	}
	return tag.RowsAffected() == 1, nil
}

func (s *pg) Touch(ctx context.Context, id string, at time.Time) (bool, error) {
	tag, err := s.q.Exec(ctx, `
		UPDATE conversations SET last_activity_at = $2
		WHERE id = $1 AND status IN `+activeStatuses, id, at)
	if err != nil {
		return false, perr.FromPostgres(err, "touch conversation")
	}
	return tag.RowsAffected() == 1, nil
}

func (s *pg) SetStatus(ctx context.Context, id string, st domain.Status, reason *string, at time.Time) (bool, error) {
	tag, err := s.q.Exec(ctx, `
		UPDATE conversations
		SET status = $2, failure_reason = $3, ended_at = $4
		WHERE id = $1 AND status IN `+activeStatuses, id, string(st), reason, at)
	if err != nil {
		return false, perr.FromPostgres(err, "set conversation status")
	}
	return tag.RowsAffected() == 1, nil
}

func (s *pg) ExpireStale(ctx context.Context, before time.Time, reason string, at time.Time) (int64, error) {
	tag, err := s.q.Exec(ctx, `
		UPDATE conversations
		SET status = 'cancelled', failure_reason = $2, ended_at = $3
		WHERE status IN `+activeStatuses+` AND last_activity_at < $1`, before, reason, at)
	if err != nil {
		return 0, perr.FromPostgres(err, "expire stale conversations")
	}
	return tag.RowsAffected(), nil
}

func scanConversation(r store.Row) (domain.Conversation, error) {
	var c domain.Conversation
	var status string
	err := r.Scan(&c.ID, &c.SenderID, &c.CampaignID, &c.OriginLine, &c.TriggerText, &c.MatchedKeyword,
		&c.MatchType, &status, &c.MessagesSent, &c.FailureReason, &c.StartedAt, &c.LastActivityAt, &c.EndedAt)
	c.Status = domain.Status(status)
	return c, err
}
