// Package service runs message plans against a transport
package service

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"triggerbot/internal/core/template"
	perr "triggerbot/internal/platform/errors"
	"triggerbot/internal/platform/logger"
	"triggerbot/internal/platform/metrics"
	ptime "triggerbot/internal/platform/time"
	"triggerbot/internal/services/dispatch/domain"
	plans "triggerbot/internal/services/plans/domain"
)

// Config tunes pacing and limits
type Config struct {
	GalleryGap   time.Duration
	SendTimeout  time.Duration
	DocumentName string
}

// Service executes plans one item at a time
type Service struct {
	Transport domain.Transport
	Media     domain.MediaFetcher
	Resolver  domain.Resolver
	Cfg       Config
	Sleep     ptime.Sleeper
}

// New constructs a dispatcher; zero config values take the defaults
func New(t domain.Transport, m domain.MediaFetcher, r domain.Resolver, cfg Config) *Service {
	if cfg.GalleryGap <= 0 {
		cfg.GalleryGap = time.Second
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 30 * time.Second
	}
	if cfg.DocumentName == "" {
		cfg.DocumentName = "document.pdf"
	}
	return &Service{Transport: t, Media: m, Resolver: r, Cfg: cfg, Sleep: ptime.Sleep}
}

// Dispatch sends plan to recipient in ascending sort order, honoring each item's delay
//
// A failed item is reported to obs and the plan continues. Dispatch stops early, returning
// the partial result and an error, when ctx ends, when a send is transport-fatal, or when
// obs returns an error.
func (s *Service) Dispatch(ctx context.Context, plan []plans.Item, recipient string, vars template.Vars, obs domain.Observer) (domain.Result, error) {
	items := append([]plans.Item(nil), plan...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].SortOrder < items[j].SortOrder })

	res := domain.Result{Total: len(items)}
	start := time.Now()
	defer func() { metrics.DispatchDuration.Observe(time.Since(start).Seconds()) }()

	log := logger.C(ctx)
	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if it.DelaySeconds > 0 {
			if err := s.Sleep(ctx, time.Duration(it.DelaySeconds)*time.Second); err != nil {
				return res, err
			}
		}

		id, err := s.item(ctx, it, recipient, vars)
		if err != nil {
			res.Failed++
			metrics.DispatchItems.WithLabelValues(string(it.Type), "failed").Inc()
			log.Warn().Err(err).Int64("item_id", it.ID).Str("type", string(it.Type)).Msg("plan item failed")
			if oerr := obs.Failed(ctx, it, err); oerr != nil {
				return res, oerr
			}
			if perr.IsTransportFatal(err) {
				return res, err
			}
			continue
		}

		res.Sent++
		metrics.DispatchItems.WithLabelValues(string(it.Type), "sent").Inc()
		if err := obs.Sent(ctx, it, id); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (s *Service) item(ctx context.Context, it plans.Item, to string, vars template.Vars) (string, error) {
	text := template.Render(it.Template(), vars)
	switch it.Type {
	case plans.ItemText:
		if strings.TrimSpace(text) == "" {
			return "", perr.Validationf("text item %d renders empty", it.ID)
		}
		return s.send(ctx, to, domain.Payload{Kind: domain.KindText, Text: text})
	case plans.ItemImage, plans.ItemAudio, plans.ItemDocument:
		if len(it.Media) == 0 {
			return "", perr.Validationf("%s item %d has no media", it.Type, it.ID)
		}
		return s.media(ctx, to, it.Type, it.Media[0], text)
	case plans.ItemGallery:
		return s.gallery(ctx, to, it, text)
	default:
		return "", perr.Validationf("item %d has unknown type %q", it.ID, it.Type)
	}
}

func (s *Service) media(ctx context.Context, to string, t plans.ItemType, ref plans.MediaRef, caption string) (string, error) {
	data, err := s.Media.Fetch(ctx, s.Resolver.Resolve(ref.Locator))
	if err != nil {
		return "", err
	}
	p := domain.Payload{Data: data, Mime: ref.MimeType, Caption: caption}
	if p.Mime == "" {
		p.Mime = http.DetectContentType(data)
	}
	switch t {
	case plans.ItemAudio:
		p.Kind, p.Voice, p.Caption = domain.KindAudio, true, ""
	case plans.ItemDocument:
		p.Kind, p.FileName = domain.KindDocument, s.Cfg.DocumentName
	default:
		p.Kind = domain.KindImage
	}
	return s.send(ctx, to, p)
}

// gallery sends every image with a gap between them; the caption rides on the first
// Per-image failures are skipped unless transport-fatal
func (s *Service) gallery(ctx context.Context, to string, it plans.Item, caption string) (string, error) {
	if len(it.Media) == 0 {
		return "", perr.Validationf("gallery item %d has no media", it.ID)
	}
	refs := append([]plans.MediaRef(nil), it.Media...)
	sort.SliceStable(refs, func(i, j int) bool { return refs[i].SortOrder < refs[j].SortOrder })

	last := domain.GalleryNone
	for i, ref := range refs {
		if i > 0 {
			if err := s.Sleep(ctx, s.Cfg.GalleryGap); err != nil {
				return "", err
			}
			caption = ""
		}
		id, err := s.media(ctx, to, plans.ItemImage, ref, caption)
		if err != nil {
			if perr.IsTransportFatal(err) {
				return "", err
			}
			logger.C(ctx).Warn().Err(err).Int64("item_id", it.ID).Int("image", i).Msg("gallery image failed")
			continue
		}
		last = id
	}
	return last, nil
}

// send bounds one transport call by the send timeout
func (s *Service) send(ctx context.Context, to string, p domain.Payload) (string, error) {
	sctx, cancel := context.WithTimeout(ctx, s.Cfg.SendTimeout)
	defer cancel()

	id, err := s.Transport.Send(sctx, to, p)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnavailable, "send %s timed out after %s", p.Kind, s.Cfg.SendTimeout)
	}
	return id, err
}
