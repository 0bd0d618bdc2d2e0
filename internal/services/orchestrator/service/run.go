package service

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"triggerbot/internal/platform/logger"
	"triggerbot/internal/platform/metrics"
	"triggerbot/internal/services/orchestrator/domain"
)

// Run consumes events until ctx ends or events closes
//
// Events are hashed by sender onto Cfg.Shards workers, each fed by a channel of
// Cfg.QueueDepth. One sender's events are handled in arrival order; different senders
// proceed in parallel. An event arriving at a full shard is dropped. The stale
// conversation sweeper runs alongside.
func (s *Service) Run(ctx context.Context, events <-chan domain.InboundEvent) error {
	log := logger.Named("orchestrator")
	log.Info().Int("shards", s.Cfg.Shards).Int("depth", s.Cfg.QueueDepth).Msg("inbound queue started")

	var wg sync.WaitGroup
	shards := make([]chan domain.InboundEvent, s.Cfg.Shards)
	for i := range shards {
		shards[i] = make(chan domain.InboundEvent, s.Cfg.QueueDepth)
		wg.Add(1)
		go func(in <-chan domain.InboundEvent) {
			defer wg.Done()
			s.worker(ctx, in)
		}(shards[i])
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.sweep(sweepCtx)
	}()

	defer func() {
		for _, ch := range shards {
			close(ch)
		}
		stopSweep()
		wg.Wait()
		log.Info().Msg("inbound queue stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			select {
			case shards[shardOf(ev.SenderID, len(shards))] <- ev:
			default:
				metrics.InboundEvents.WithLabelValues("overflow").Inc()
				log.Warn().Str("sender", ev.SenderID).Msg("inbound shard full; event dropped")
			}
		}
	}
}

func (s *Service) worker(ctx context.Context, in <-chan domain.InboundEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-in:
			if !ok {
				return
			}
			s.safeHandle(ctx, ev)
		}
	}
}

// safeHandle keeps one bad event from killing its shard
func (s *Service) safeHandle(ctx context.Context, ev domain.InboundEvent) {
	defer func() {
		if r := recover(); r != nil {
			logger.C(ctx).Error().Interface("panic", r).Str("sender", ev.SenderID).Msg("inbound handler panicked")
		}
	}()
	_, _ = s.Handle(ctx, ev)
}

func (s *Service) sweep(ctx context.Context) {
	t := time.NewTicker(s.Cfg.SweepEvery)
	defer t.Stop()
	for {
		if _, err := s.Tracker.ExpireStale(ctx, s.Cfg.StaleAfter); err != nil && ctx.Err() == nil {
			logger.Named("orchestrator").Error().Err(err).Msg("stale conversation sweep failed")
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

func shardOf(sender string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sender))
	return int(h.Sum32() % uint32(n))
}
