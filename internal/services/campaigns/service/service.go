// Package service implements campaign selection
package service

import (
	"context"
	"sort"
	"sync"

	"triggerbot/internal/core/keyword"
	"triggerbot/internal/core/normalize"
	"triggerbot/internal/core/ruleset"
	"triggerbot/internal/modkit/repokit"
	perr "triggerbot/internal/platform/errors"
	"triggerbot/internal/platform/logger"
	"triggerbot/internal/services/campaigns/domain"
	"triggerbot/internal/services/campaigns/repo"
)

// Config for the selector
type Config struct {
	// CacheRules keeps compiled matchers between calls, keyed by campaign id
	// and invalidated whenever the stored document changes
	CacheRules bool
}

// Service implements domain.SelectorPort
type Service struct {
	DB     repokit.Queryer
	Binder repokit.Binder[repo.Storage]
	Cfg    Config

	mu    sync.Mutex
	cache map[int64]compiled
}

type compiled struct {
	doc string
	m   *keyword.Matcher
	err error
}

// New constructs the selector
func New(db repokit.Queryer, b repokit.Binder[repo.Storage], cfg Config) *Service {
	return &Service{DB: db, Binder: b, Cfg: cfg, cache: map[int64]compiled{}}
}

// DetectCampaign lists active campaigns, orders them by priority (stable), and
// returns the first whose rule set matches raw
// A campaign with a malformed rule set is logged and skipped
func (s *Service) DetectCampaign(ctx context.Context, raw string) (domain.Detection, bool, error) {
	msg := normalize.Normalize(raw)
	if msg == "" {
		return domain.Detection{}, false, nil
	}

	cs, err := s.Binder.Bind(s.DB).ListActive(ctx)
	if err != nil {
		return domain.Detection{}, false, err
	}
	sort.SliceStable(cs, func(i, j int) bool { return cs[i].Priority > cs[j].Priority })
	s.prune(cs)

	log := logger.C(ctx)
	for _, c := range cs {
		m, err := s.matcher(c)
		if err != nil {
			evt := log.Warn().Err(err).Int64("campaign_id", c.ID).Str("campaign", c.Name)
			if e, ok := perr.As(err); ok && e.Field() != "" {
				evt = evt.Str("field", e.Field())
			}
			evt.Msg("skipping campaign with invalid rule set")
			continue
		}
		if r, ok := m.MatchNormalized(msg); ok {
			return domain.Detection{
				CampaignID:     c.ID,
				CampaignName:   c.Name,
				MatchedKeyword: r.Text,
				MatchType:      r.Type,
				Priority:       c.Priority,
			}, true, nil
		}
	}
	return domain.Detection{}, false, nil
}

func (s *Service) matcher(c domain.Campaign) (*keyword.Matcher, error) {
	if !s.Cfg.CacheRules {
		return compile(c.Rules)
	}
	doc := string(c.Rules)

	s.mu.Lock()
	defer s.mu.Unlock()
	if hit, ok := s.cache[c.ID]; ok && hit.doc == doc {
		return hit.m, hit.err
	}
	m, err := compile(c.Rules)
	s.cache[c.ID] = compiled{doc: doc, m: m, err: err}
	return m, err
}

// prune drops cached matchers of campaigns that are no longer active
func (s *Service) prune(active []domain.Campaign) {
	if !s.Cfg.CacheRules {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	keep := make(map[int64]compiled, len(active))
	for _, c := range active {
		if hit, ok := s.cache[c.ID]; ok {
			keep[c.ID] = hit
		}
	}
	s.cache = keep
}

func compile(doc []byte) (*keyword.Matcher, error) {
	rs, err := ruleset.Parse(doc)
	if err != nil {
		return nil, err
	}
	return keyword.Compile(rs), nil
}
