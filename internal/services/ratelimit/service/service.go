// Package service implements the per-sender admission gate
package service

import (
	"context"
	"strings"
	"time"

	"triggerbot/internal/modkit/repokit"
	perr "triggerbot/internal/platform/errors"
	"triggerbot/internal/platform/logger"
	ptime "triggerbot/internal/platform/time"
	"triggerbot/internal/services/ratelimit/domain"
	"triggerbot/internal/services/ratelimit/repo"
)

// Service implements domain.LimiterPort and domain.AdminPort
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[repo.Storage]
	Limits domain.Limits
	Now    ptime.Clock
}

// New constructs the limiter; non-positive limits fall back to 3 per hour and 10 per day
func New(db repokit.TxRunner, b repokit.Binder[repo.Storage], l domain.Limits) *Service {
	if l.PerHour <= 0 {
		l.PerHour = 3
	}
	if l.PerDay <= 0 {
		l.PerDay = 10
	}
	return &Service{DB: db, Binder: b, Limits: l, Now: ptime.System}
}

func (s *Service) repo() repo.Storage { return s.Binder.Bind(s.DB) }

// Check decides whether sender may trigger now
// Store failures are logged and admit the sender with ReasonErrorCheck
func (s *Service) Check(ctx context.Context, sender string) domain.Decision {
	log := logger.C(ctx)
	r := s.repo()

	banned, err := r.IsPermanentlyBlocked(ctx, sender)
	if err != nil {
		log.Error().Err(err).Msg("rate limit check failed; admitting")
		return domain.Decision{Allowed: true, Reason: domain.ReasonErrorCheck}
	}
	if banned {
		return domain.Decision{Allowed: false, Reason: domain.ReasonBlockedPermanent}
	}

	rec, ok, err := r.GetRecord(ctx, sender)
	if err != nil {
		log.Error().Err(err).Msg("rate limit check failed; admitting")
		return domain.Decision{Allowed: true, Reason: domain.ReasonErrorCheck}
	}
	if !ok {
		return domain.Decision{Allowed: true, Reason: domain.ReasonNewUser}
	}

	d := domain.Decide(rec, s.Now(), s.Limits)
	if d.Reason == domain.ReasonUnblocked {
		if err := r.ClearBlock(ctx, sender); err != nil {
			log.Warn().Err(err).Msg("clearing expired block failed")
		} else {
			log.Info().Str("reason", rec.BlockReason).Msg("temporary block expired")
		}
	}
	return d
}

// Update records one consumed trigger for sender
func (s *Service) Update(ctx context.Context, sender string) error {
	now := s.Now()
	return repokit.InTx(ctx, s.DB, s.Binder, func(r repo.Storage) error {
		_, err := r.UpsertOnTrigger(ctx, sender, now)
		return err
	})
}

// Block blocks sender for hours, or until lifted when hours is nil
func (s *Service) Block(ctx context.Context, sender, reason string, hours *int) error {
	var until *time.Time
	if hours != nil {
		if *hours <= 0 {
			return perr.WithField(perr.Validationf("hours must be positive"), "hours")
		}
		t := s.Now().Add(time.Duration(*hours) * time.Hour)
		until = &t
	}
	if err := s.repo().SetBlock(ctx, sender, strings.TrimSpace(reason), until); err != nil {
		return err
	}
	evt := logger.C(ctx).Info().Str("sender", sender).Str("reason", reason)
	if until != nil {
		evt = evt.Time("until", *until)
	}
	evt.Msg("sender blocked")
	return nil
}

// Unblock lifts every block on sender, the permanent list included
func (s *Service) Unblock(ctx context.Context, sender string) error {
	err := repokit.InTx(ctx, s.DB, s.Binder, func(r repo.Storage) error {
		if err := r.RemovePermanentBlock(ctx, sender); err != nil {
			return err
		}
		return r.ClearBlock(ctx, sender)
	})
	if err != nil {
		return err
	}
	logger.C(ctx).Info().Str("sender", sender).Msg("sender unblocked")
	return nil
}

// BlockPermanently adds sender to the block list
func (s *Service) BlockPermanently(ctx context.Context, sender, reason string) error {
	err := repokit.WithTx(ctx, s.DB, func(q repokit.Queryer) error {
		return s.Binder.Bind(q).AddPermanentBlock(ctx, sender, strings.TrimSpace(reason))
	})
	if err != nil {
		return err
	}
	logger.C(ctx).Info().Str("sender", sender).Str("reason", reason).Msg("sender banned")
	return nil
}

// Status reports the stored record and what Check would decide, without clearing expired blocks
func (s *Service) Status(ctx context.Context, sender string) (domain.Record, bool, domain.Decision, error) {
	r := s.repo()
	banned, err := r.IsPermanentlyBlocked(ctx, sender)
	if err != nil {
		return domain.Record{}, false, domain.Decision{}, err
	}
	rec, ok, err := r.GetRecord(ctx, sender)
	if err != nil {
		return domain.Record{}, false, domain.Decision{}, err
	}
	switch {
	case banned:
		rec.BlockedPermanently = true
		return rec, ok, domain.Decision{Allowed: false, Reason: domain.ReasonBlockedPermanent}, nil
	case !ok:
		return rec, false, domain.Decision{Allowed: true, Reason: domain.ReasonNewUser}, nil
	default:
		return rec, true, domain.Decide(rec, s.Now(), s.Limits), nil
	}
}
