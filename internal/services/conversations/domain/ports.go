package domain

import (
	"context"
	"time"
)

// TrackerPort records the lifecycle of conversations
type TrackerPort interface {
	// Claim atomically creates an initiated conversation
	// It fails with ErrActiveConversation when the sender already has one
	Claim(ctx context.Context, c NewConversation) (string, error)
	HasActive(ctx context.Context, sender string) (Conversation, bool, error)
	// IncrementSent counts one delivered item and moves initiated to in_progress
	IncrementSent(ctx context.Context, id string) error
	Complete(ctx context.Context, id string) error
	Fail(ctx context.Context, id, reason string) error
	Cancel(ctx context.Context, id, reason string) error
	// Touch marks a live conversation as still being worked on
	Touch(ctx context.Context, id string) error
	// ExpireStale cancels active conversations with no activity for olderThan
	ExpireStale(ctx context.Context, olderThan time.Duration) (int64, error)
}
