// Package repo provides the postgres rate-limit repository
package repo

import (
	"context"
	"time"

	"triggerbot/internal/modkit/repokit"
	perr "triggerbot/internal/platform/errors"
	"triggerbot/internal/platform/store"
	"triggerbot/internal/services/ratelimit/domain"
)

type binder struct{}

// NewPG constructs a repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage persists per-sender rate-limit state and the permanent block list
type Storage interface {
	// GetRecord returns the sender's record; ok is false when none exists
	GetRecord(ctx context.Context, sender string) (domain.Record, bool, error)
	// UpsertOnTrigger advances the sender's counters under a row lock
	// It must run inside a transaction for the lock to hold
	UpsertOnTrigger(ctx context.Context, sender string, now time.Time) (domain.Record, error)
	// SetBlock creates or updates the record with a temporary or indefinite block
	SetBlock(ctx context.Context, sender, reason string, until *time.Time) error
	// ClearBlock lifts a temporary block and the record's permanent flag
	ClearBlock(ctx context.Context, sender string) error
	IsPermanentlyBlocked(ctx context.Context, sender string) (bool, error)
	AddPermanentBlock(ctx context.Context, sender, reason string) error
	RemovePermanentBlock(ctx context.Context, sender string) error
}

type pg struct{ q repokit.Queryer }

const recordCols = `sender_id, blocked_permanently, is_blocked, blocked_until, block_reason,
	hour_count, day_count, total_count, last_trigger_at`

func scanRecord(r store.Row) (domain.Record, error) {
	var rec domain.Record
	err := r.Scan(&rec.SenderID, &rec.BlockedPermanently, &rec.IsBlocked, &rec.BlockedUntil,
		&rec.BlockReason, &rec.HourCount, &rec.DayCount, &rec.TotalCount, &rec.LastTriggerAt)
	return rec, err
}

func (s *pg) GetRecord(ctx context.Context, sender string) (domain.Record, bool, error) {
	rec, err := store.One(ctx, s.q, scanRecord,
		`SELECT `+recordCols+` FROM rate_limits WHERE sender_id = $1`, sender)
	switch {
	case err == nil:
		return rec, true, nil
	case perr.IsCode(err, perr.ErrorCodeNotFound):
		return domain.Record{}, false, nil
	default:
		return domain.Record{}, false, perr.FromPostgres(err, "get rate limit")
	}
}

func (s *pg) lock(ctx context.Context, sender string) (domain.Record, bool, error) {
	rec, err := store.One(ctx, s.q, scanRecord,
		`SELECT `+recordCols+` FROM rate_limits WHERE sender_id = $1 FOR UPDATE`, sender)
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return domain.Record{}, false, nil
	}
	return rec, err == nil, err
}

func (s *pg) UpsertOnTrigger(ctx context.Context, sender string, now time.Time) (domain.Record, error) {
	rec, ok, err := s.lock(ctx, sender)
	if err != nil {
		return domain.Record{}, perr.FromPostgres(err, "lock rate limit")
	}
	if !ok {
		// a concurrent first trigger may win the insert; the relock below serializes behind it
		if _, err := s.q.Exec(ctx, `
			INSERT INTO rate_limits (sender_id) VALUES ($1)
			ON CONFLICT (sender_id) DO NOTHING`, sender); err != nil {
			return domain.Record{}, perr.FromPostgres(err, "insert rate limit")
		}
		if rec, _, err = s.lock(ctx, sender); err != nil {
			return domain.Record{}, perr.FromPostgres(err, "lock rate limit")
		}
		rec.SenderID = sender
	}

	next := domain.Advance(rec, now)
	err = store.ExecOne(ctx, s.q, `
		UPDATE rate_limits
		SET hour_count = $2, day_count = $3, total_count = $4, last_trigger_at = $5, updated_at = $5
		WHERE sender_id = $1`,
		sender, next.HourCount, next.DayCount, next.TotalCount, now)
	if err != nil {
		return domain.Record{}, perr.FromPostgres(err, "update rate limit")
	}
	return next, nil
}

func (s *pg) SetBlock(ctx context.Context, sender, reason string, until *time.Time) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO rate_limits (sender_id, is_blocked, blocked_until, block_reason)
		VALUES ($1, true, $2, $3)
		ON CONFLICT (sender_id) DO UPDATE
		SET is_blocked = true, blocked_until = EXCLUDED.blocked_until,
		    block_reason = EXCLUDED.block_reason, updated_at = now()`,
		sender, until, reason)
	return perr.FromPostgres(err, "set block")
}

func (s *pg) ClearBlock(ctx context.Context, sender string) error {
	_, err := s.q.Exec(ctx, `
		UPDATE rate_limits
		SET is_blocked = false, blocked_until = NULL, blocked_permanently = false,
		    block_reason = '', updated_at = now()
		WHERE sender_id = $1`, sender)
	return perr.FromPostgres(err, "clear block")
}

func (s *pg) IsPermanentlyBlocked(ctx context.Context, sender string) (bool, error) {
	ok, err := store.Scalar[bool](ctx, s.q,
		`SELECT EXISTS (SELECT 1 FROM blocked_senders WHERE sender_id = $1)`, sender)
	if err != nil {
		return false, perr.FromPostgres(err, "check block list")
	}
	return ok, nil
}

func (s *pg) AddPermanentBlock(ctx context.Context, sender, reason string) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO blocked_senders (sender_id, reason) VALUES ($1, $2)
		ON CONFLICT (sender_id) DO UPDATE SET reason = EXCLUDED.reason`, sender, reason)
	if err != nil {
		return perr.FromPostgres(err, "add permanent block")
	}
	_, err = s.q.Exec(ctx, `
		INSERT INTO rate_limits (sender_id, blocked_permanently, block_reason) VALUES ($1, true, $2)
		ON CONFLICT (sender_id) DO UPDATE
		SET blocked_permanently = true, block_reason = EXCLUDED.block_reason, updated_at = now()`,
		sender, reason)
	return perr.FromPostgres(err, "flag permanent block")
}

func (s *pg) RemovePermanentBlock(ctx context.Context, sender string) error {
	_, err := s.q.Exec(ctx, `DELETE FROM blocked_senders WHERE sender_id = $1`, sender)
	return perr.FromPostgres(err, "remove permanent block")
}
