// Package domain defines the conversation lifecycle
package domain

import (
	"time"

	perr "triggerbot/internal/platform/errors"
)

// Status of a conversation; only Initiated and InProgress are active
type Status string

const (
	StatusInitiated  Status = "initiated"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// Active reports whether s still accepts writes
func (s Status) Active() bool { return s == StatusInitiated || s == StatusInProgress }

// Terminal reports whether s is a final state
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

var (
	// ErrActiveConversation is returned by Claim when the sender already has an active conversation
	ErrActiveConversation = perr.New(perr.ErrorCodeConflict, "sender already has an active conversation")

	// ErrNotActive is returned by writes against a conversation that has already ended
	ErrNotActive = perr.New(perr.ErrorCodeConflict, "conversation is not active")
)

// NewConversation carries what Claim records about a trigger
type NewConversation struct {
	SenderID       string
	CampaignID     int64
	OriginLine     string
	TriggerText    string
	MatchedKeyword string
	MatchType      string
}

// Conversation is one delivery attempt for one trigger
type Conversation struct {
	ID             string     `json:"id"`
	SenderID       string     `json:"sender_id"`
	CampaignID     int64      `json:"campaign_id"`
	OriginLine     string     `json:"origin_line"`
	TriggerText    string     `json:"trigger_text"`
	MatchedKeyword string     `json:"matched_keyword"`
	MatchType      string     `json:"match_type"`
	Status         Status     `json:"status"`
	MessagesSent   int        `json:"messages_sent"`
	FailureReason  *string    `json:"failure_reason,omitempty"`
	StartedAt      time.Time  `json:"started_at"`
	LastActivityAt time.Time  `json:"last_activity_at"`
	EndedAt        *time.Time `json:"ended_at,omitempty"`
}
