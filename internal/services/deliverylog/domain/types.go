// Package domain defines delivery log entries
package domain

import (
	"context"
	"time"
)

// Status of one delivered or failed plan item
type Status string

const (
	StatusSent   Status = "sent"
	StatusFailed Status = "failed"
)

// Entry is one row of the delivery log
type Entry struct {
	ConversationID     string
	ItemID             int64
	Status             Status
	TransportMessageID string
	Error              string
	LoggedAt           time.Time
}

// LogPort records per-item delivery outcomes
// Writes are best effort; failures are logged and never reach the caller
type LogPort interface {
	LogSent(ctx context.Context, conversationID string, itemID int64, transportMessageID string)
	LogFailed(ctx context.Context, conversationID string, itemID int64, errText string)
}
