// Package service composes matching, admission, tracking and dispatch per inbound event
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"triggerbot/internal/core/template"
	"triggerbot/internal/platform/logger"
	"triggerbot/internal/platform/metrics"
	campaigns "triggerbot/internal/services/campaigns/domain"
	conversations "triggerbot/internal/services/conversations/domain"
	deliverylog "triggerbot/internal/services/deliverylog/domain"
	dispatch "triggerbot/internal/services/dispatch/domain"
	"triggerbot/internal/services/orchestrator/domain"
	"triggerbot/internal/services/orchestrator/guardrails"
	plans "triggerbot/internal/services/plans/domain"
	ratelimit "triggerbot/internal/services/ratelimit/domain"

	"github.com/google/uuid"
)

// Config for the inbound queue and the stale sweeper
type Config struct {
	Shards     int
	QueueDepth int
	SweepEvery time.Duration
	StaleAfter time.Duration
}

// Deps are the collaborators the orchestrator drives
type Deps struct {
	Selector   campaigns.SelectorPort
	Limiter    ratelimit.LimiterPort
	Tracker    conversations.TrackerPort
	Plans      plans.ReaderPort
	Log        deliverylog.LogPort
	Dispatcher dispatch.DispatcherPort
	Lock       guardrails.Lock
}

// Service handles inbound events
type Service struct {
	Deps
	Cfg Config
}

// New constructs the orchestrator; a nil Lock falls back to a local one
func New(d Deps, cfg Config) *Service {
	if d.Lock == nil {
		d.Lock = guardrails.NewLocal()
	}
	if cfg.Shards <= 0 {
		cfg.Shards = 8
	}
	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = 64
	}
	if cfg.SweepEvery <= 0 {
		cfg.SweepEvery = time.Minute
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 30 * time.Minute
	}
	return &Service{Deps: d, Cfg: cfg}
}

// Handle runs one event through detection, admission and delivery
//
// The returned error is set for store failures before a conversation exists and for
// dispatch aborts; in the latter case the conversation has already been finalized.
func (s *Service) Handle(ctx context.Context, ev domain.InboundEvent) (out domain.Outcome, err error) {
	ctx = logger.WithTrigger(ctx, uuid.NewString(), ev.SenderID)
	defer func() { metrics.InboundEvents.WithLabelValues(string(out.Kind)).Inc() }()

	if ev.IsGroup || ev.FromSelf || strings.TrimSpace(ev.Text) == "" {
		return domain.Outcome{Kind: domain.KindDiscarded}, nil
	}
	log := logger.C(ctx)

	det, ok, err := s.Selector.DetectCampaign(ctx, ev.Text)
	if err != nil {
		log.Error().Err(err).Msg("campaign detection failed")
		return domain.Outcome{Kind: domain.KindError}, err
	}
	if !ok {
		return domain.Outcome{Kind: domain.KindNoMatch}, nil
	}
	out = domain.Outcome{CampaignID: det.CampaignID}

	id, denied, err := s.admit(ctx, ev, det)
	if err != nil {
		out.Kind = domain.KindError
		return out, err
	}
	if denied != nil {
		return *denied, nil
	}
	out.ConversationID = id

	ctx = logger.WithConversation(ctx, id)
	log = logger.C(ctx)
	log.Info().Int64("campaign_id", det.CampaignID).Str("keyword", det.MatchedKeyword).Str("match_type", string(det.MatchType)).Msg("trigger admitted")

	// the trigger is consumed whatever the delivery outcome
	defer func() {
		if uerr := s.Limiter.Update(context.WithoutCancel(ctx), ev.SenderID); uerr != nil {
			log.Error().Err(uerr).Msg("rate limit update failed")
		}
	}()

	plan, err := s.Plans.Plan(ctx, det.CampaignID)
	if err != nil {
		s.finish(ctx, id, conversations.StatusFailed, err.Error())
		out.Kind = domain.KindFailed
		return out, err
	}
	if len(plan) == 0 {
		s.finish(ctx, id, conversations.StatusFailed, "empty plan")
		out.Kind = domain.KindFailed
		return out, nil
	}

	vars := template.Vars{
		"name":     ev.SenderName,
		"phone":    phone(ev.SenderID),
		"campaign": det.CampaignName,
		"keyword":  det.MatchedKeyword,
	}
	stopBeat := s.keepAlive(ctx, id)
	res, derr := s.Dispatcher.Dispatch(ctx, plan, ev.SenderID, vars, observer{conv: id, tracker: s.Tracker, log: s.Log})
	stopBeat()
	out.Result = res

	switch {
	case derr != nil && ctx.Err() != nil:
		s.finish(ctx, id, conversations.StatusCancelled, "stopped: "+ctx.Err().Error())
		out.Kind = domain.KindCancelled
	case derr != nil:
		s.finish(ctx, id, conversations.StatusFailed, derr.Error())
		out.Kind = domain.KindFailed
	case res.Sent == 0:
		s.finish(ctx, id, conversations.StatusFailed, "all items failed")
		out.Kind = domain.KindFailed
	default:
		// partial deliveries complete; messages_sent and the delivery log keep the count
		s.finish(ctx, id, conversations.StatusCompleted, "")
		out.Kind = domain.KindDispatched
	}
	log.Info().Int("total", res.Total).Int("sent", res.Sent).Int("failed", res.Failed).Str("outcome", string(out.Kind)).Msg("dispatch finished")
	return out, derr
}

// admit holds the sender's admission lock across the rate-limit check and the claim
// It returns the conversation id, or a non-nil outcome when the event stops here
func (s *Service) admit(ctx context.Context, ev domain.InboundEvent, det campaigns.Detection) (string, *domain.Outcome, error) {
	log := logger.C(ctx)
	stop := func(k domain.Kind, reason string) (string, *domain.Outcome, error) {
		return "", &domain.Outcome{Kind: k, Reason: reason, CampaignID: det.CampaignID}, nil
	}

	release, err := s.Lock.Acquire(ctx, ev.SenderID)
	switch {
	case errors.Is(err, guardrails.ErrHeld):
		metrics.AdmissionDenied.WithLabelValues("LOCKED").Inc()
		return stop(domain.KindLocked, "admission in progress")
	case err != nil:
		// the claim below still refuses a second active conversation
		log.Warn().Err(err).Msg("admission lock unavailable; continuing without it")
		release = func() {}
	}
	defer release()

	if d := s.Limiter.Check(ctx, ev.SenderID); !d.Allowed {
		metrics.AdmissionDenied.WithLabelValues(string(d.Reason)).Inc()
		log.Info().Str("reason", string(d.Reason)).Msg("trigger denied")
		return stop(domain.KindDenied, string(d.Reason))
	}

	if c, active, err := s.Tracker.HasActive(ctx, ev.SenderID); err != nil {
		log.Error().Err(err).Msg("active conversation lookup failed")
		return "", nil, err
	} else if active {
		metrics.AdmissionDenied.WithLabelValues("ACTIVE_CONVERSATION").Inc()
		return stop(domain.KindActive, "conversation "+c.ID+" in progress")
	}

	id, err := s.Tracker.Claim(ctx, conversations.NewConversation{
		SenderID:       ev.SenderID,
		CampaignID:     det.CampaignID,
		OriginLine:     ev.Line,
		TriggerText:    ev.Text,
		MatchedKeyword: det.MatchedKeyword,
		MatchType:      string(det.MatchType),
	})
	switch {
	case errors.Is(err, conversations.ErrActiveConversation):
		metrics.AdmissionDenied.WithLabelValues("ACTIVE_CONVERSATION").Inc()
		return stop(domain.KindActive, "conversation claimed concurrently")
	case err != nil:
		log.Error().Err(err).Msg("conversation claim failed")
		return "", nil, err
	}
	return id, nil, nil
}

// finish writes the terminal status; a conversation already ended elsewhere is only logged
func (s *Service) finish(ctx context.Context, id string, st conversations.Status, reason string) {
	ctx = context.WithoutCancel(ctx)
	var err error
	switch st {
	case conversations.StatusCompleted:
		err = s.Tracker.Complete(ctx, id)
	case conversations.StatusCancelled:
		err = s.Tracker.Cancel(ctx, id, reason)
	default:
		err = s.Tracker.Fail(ctx, id, reason)
	}
	if err != nil {
		logger.C(ctx).Warn().Err(err).Str("status", string(st)).Msg("finalizing conversation failed")
	}
}

// phone strips the chat-network suffix from a sender id
func phone(sender string) string {
	p, _, _ := strings.Cut(sender, "@")
	return p
}

// keepAlive touches conversation id every third of the stale horizon so the sweeper
// leaves it alone during long delays; the returned stop waits for the beat to end
func (s *Service) keepAlive(ctx context.Context, id string) (stop func()) {
	every := s.Cfg.StaleAfter / 3
	if every <= 0 {
		every = time.Millisecond
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		t := time.NewTicker(every)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if err := s.Tracker.Touch(ctx, id); err != nil && ctx.Err() == nil {
					logger.C(ctx).Warn().Err(err).Msg("conversation heartbeat failed")
				}
			}
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

// observer logs each item to the delivery log and counts sent items on the conversation
type observer struct {
	conv    string
	tracker conversations.TrackerPort
	log     deliverylog.LogPort
}

func (o observer) Sent(ctx context.Context, it plans.Item, messageID string) error {
	o.log.LogSent(ctx, o.conv, it.ID, messageID)
	return o.tracker.IncrementSent(ctx, o.conv)
}

func (o observer) Failed(ctx context.Context, it plans.Item, cause error) error {
	o.log.LogFailed(ctx, o.conv, it.ID, cause.Error())
	return nil
}
