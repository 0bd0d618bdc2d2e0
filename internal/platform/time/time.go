// Package time contains clock and sleep helpers shared by services
package time

import (
	"context"
	"time"
)

// Clock returns the current time; services hold one so tests can pin it
type Clock func() time.Time

// System is the wall clock in UTC
func System() time.Time { return time.Now().UTC() }

// Fixed returns a Clock pinned to t
func Fixed(t time.Time) Clock { return func() time.Time { return t } }

// Sleeper blocks for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep waits for d; it returns ctx.Err() if ctx ends first
// Non-positive durations only check ctx
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Ptr returns a pointer to t or nil if t is zero
func Ptr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
