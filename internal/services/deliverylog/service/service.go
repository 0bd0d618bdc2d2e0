// Package service implements the best-effort delivery log
package service

import (
	"context"

	"triggerbot/internal/platform/logger"
	str "triggerbot/internal/platform/strings"
	ptime "triggerbot/internal/platform/time"
	"triggerbot/internal/services/deliverylog/domain"
	"triggerbot/internal/services/deliverylog/repo"
)

// maxErrorText bounds the error column of a failed entry
const maxErrorText = 1000

// Service implements domain.LogPort over one or more writers
type Service struct {
	Writers []repo.Writer
	Now     ptime.Clock
}

// New constructs the delivery log; with no writers every call is a no-op
func New(writers ...repo.Writer) *Service {
	return &Service{Writers: writers, Now: ptime.System}
}

// LogSent records a delivered item
func (s *Service) LogSent(ctx context.Context, conversationID string, itemID int64, transportMessageID string) {
	s.write(ctx, domain.Entry{
		ConversationID:     conversationID,
		ItemID:             itemID,
		Status:             domain.StatusSent,
		TransportMessageID: transportMessageID,
	})
}

// LogFailed records a failed item
func (s *Service) LogFailed(ctx context.Context, conversationID string, itemID int64, errText string) {
	s.write(ctx, domain.Entry{
		ConversationID: conversationID,
		ItemID:         itemID,
		Status:         domain.StatusFailed,
		Error:          str.Truncate(errText, maxErrorText),
	})
}

func (s *Service) write(ctx context.Context, e domain.Entry) {
	e.LoggedAt = s.Now()
	for _, w := range s.Writers {
		if err := w.Write(ctx, e); err != nil {
			logger.C(ctx).Warn().Err(err).
				Str("sink", w.Sink()).
				Str("conversation_id", e.ConversationID).
				Int64("item_id", e.ItemID).
				Msg("delivery log write failed")
		}
	}
}
