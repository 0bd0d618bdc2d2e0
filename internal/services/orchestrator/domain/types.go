// Package domain defines inbound events and orchestration outcomes
package domain

import (
	"time"

	dispatch "triggerbot/internal/services/dispatch/domain"
)

// InboundEvent is one chat message received by the bot
type InboundEvent struct {
	SenderID   string
	Text       string
	IsGroup    bool
	FromSelf   bool
	SenderName string
	ReceivedAt time.Time
	// Line is the bot's own number the message arrived on, when known
	Line string
}

// Kind labels what Handle did with an event; values double as metric labels
type Kind string

const (
	KindDiscarded  Kind = "discarded"
	KindNoMatch    Kind = "no_match"
	KindLocked     Kind = "locked"
	KindDenied     Kind = "denied"
	KindActive     Kind = "active"
	KindDispatched Kind = "dispatched"
	KindFailed     Kind = "failed"
	KindCancelled  Kind = "cancelled"
	KindError      Kind = "error"
)

// Outcome reports the handling of one event
type Outcome struct {
	Kind           Kind
	Reason         string
	CampaignID     int64
	ConversationID string
	Result         dispatch.Result
}
