// Package service implements the conversation tracker
package service

import (
	"context"
	"time"

	"triggerbot/internal/modkit/repokit"
	"triggerbot/internal/platform/logger"
	"triggerbot/internal/platform/metrics"
	str "triggerbot/internal/platform/strings"
	ptime "triggerbot/internal/platform/time"
	"triggerbot/internal/services/conversations/domain"
	"triggerbot/internal/services/conversations/repo"

	"github.com/google/uuid"
)

// maxReason bounds failure_reason; transport errors can carry whole frames
const maxReason = 500

// staleReason is recorded on conversations cancelled by ExpireStale
const staleReason = "stale: no activity before the horizon"

// Service implements domain.TrackerPort
type Service struct {
	DB     repokit.Queryer
	Binder repokit.Binder[repo.Storage]
	Now    ptime.Clock
	NewID  func() string
}

// New constructs the tracker with random v4 ids
func New(db repokit.Queryer, b repokit.Binder[repo.Storage]) *Service {
	return &Service{DB: db, Binder: b, Now: ptime.System, NewID: uuid.NewString}
}

func (s *Service) repo() repo.Storage { return s.Binder.Bind(s.DB) }

// Claim creates the conversation and returns its id
func (s *Service) Claim(ctx context.Context, c domain.NewConversation) (string, error) {
	id := s.NewID()
	if err := s.repo().Claim(ctx, id, c, s.Now()); err != nil {
		return "", err
	}
	logger.C(ctx).Debug().Str("conversation_id", id).Int64("campaign_id", c.CampaignID).Msg("conversation claimed")
	return id, nil
}

// HasActive returns the sender's active conversation if there is one
func (s *Service) HasActive(ctx context.Context, sender string) (domain.Conversation, bool, error) {
	return s.repo().GetActive(ctx, sender)
}

// IncrementSent fails with ErrNotActive once the conversation has ended
func (s *Service) IncrementSent(ctx context.Context, id string) error {
	return live(s.repo().IncrementSent(ctx, id, s.Now()))
}

// Touch refreshes last activity; an ended conversation yields ErrNotActive
func (s *Service) Touch(ctx context.Context, id string) error {
	return live(s.repo().Touch(ctx, id, s.Now()))
}

func live(ok bool, err error) error {
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotActive
	}
	return nil
}

// Complete marks the conversation completed
func (s *Service) Complete(ctx context.Context, id string) error {
	return s.finish(ctx, id, domain.StatusCompleted, nil)
}

// Fail marks the conversation failed with reason
func (s *Service) Fail(ctx context.Context, id, reason string) error {
	return s.finish(ctx, id, domain.StatusFailed, &reason)
}

// Cancel marks the conversation cancelled with reason
func (s *Service) Cancel(ctx context.Context, id, reason string) error {
	return s.finish(ctx, id, domain.StatusCancelled, &reason)
}

func (s *Service) finish(ctx context.Context, id string, st domain.Status, reason *string) error {
	if reason != nil {
		r := str.Truncate(*reason, maxReason)
		reason = &r
	}
	ok, err := s.repo().SetStatus(ctx, id, st, reason, s.Now())
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotActive
	}
	metrics.ConversationsFinished.WithLabelValues(string(st)).Inc()

	evt := logger.C(ctx).Info().Str("conversation_id", id).Str("status", string(st))
	if reason != nil {
		evt = evt.Str("reason", *reason)
	}
	evt.Msg("conversation finished")
	return nil
}

// ExpireStale cancels active conversations idle for olderThan and returns how many
func (s *Service) ExpireStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	now := s.Now()
	n, err := s.repo().ExpireStale(ctx, now.Add(-olderThan), staleReason, now)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.ConversationsFinished.WithLabelValues(string(domain.StatusCancelled)).Add(float64(n))
		logger.C(ctx).Warn().Int64("count", n).Dur("older_than", olderThan).Msg("expired stale conversations")
	}
	return n, nil
}
