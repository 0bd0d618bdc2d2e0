// Package domain defines rate-limit records, decisions and ports
package domain

import "time"

// Reason explains a Decision
type Reason string

const (
	ReasonBlockedPermanent Reason = "BLOCKED_PERMANENT"
	ReasonBlockedTemporary Reason = "BLOCKED_TEMPORARY"
	ReasonUnblocked        Reason = "UNBLOCKED"
	ReasonNewUser          Reason = "NEW_USER"
	ReasonHourLimit        Reason = "RATE_LIMIT_HOUR"
	ReasonDayLimit         Reason = "RATE_LIMIT_DAY"
	ReasonOK               Reason = "OK"
	// ReasonErrorCheck means the store could not be read and the sender was let through
	ReasonErrorCheck Reason = "ERROR_CHECK"
)

// Decision is the outcome of an admission check
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  Reason `json:"reason"`
}

// Windows the counters are measured over
const (
	HourWindow = time.Hour
	DayWindow  = 24 * time.Hour
)

// Limits are the per-sender trigger ceilings
type Limits struct {
	PerHour int
	PerDay  int
}

// Record is the stored rate-limit state of one sender
type Record struct {
	SenderID           string     `json:"sender_id"`
	BlockedPermanently bool       `json:"blocked_permanently"`
	IsBlocked          bool       `json:"is_blocked"`
	BlockedUntil       *time.Time `json:"blocked_until,omitempty"`
	BlockReason        string     `json:"block_reason,omitempty"`
	HourCount          int        `json:"hour_count"`
	DayCount           int        `json:"day_count"`
	TotalCount         int64      `json:"total_count"`
	LastTriggerAt      *time.Time `json:"last_trigger_at,omitempty"`
}

// within reports whether t is inside the trailing window ending at now
func within(t *time.Time, now time.Time, window time.Duration) bool {
	return t != nil && now.Sub(*t) < window
}

// Decide applies the admission rules to a record already known to exist and
// not permanently listed; expired temporary blocks yield ReasonUnblocked and
// the caller is expected to clear them
func Decide(r Record, now time.Time, l Limits) Decision {
	if r.BlockedPermanently {
		return Decision{Allowed: false, Reason: ReasonBlockedPermanent}
	}
	if r.IsBlocked {
		if r.BlockedUntil != nil && !r.BlockedUntil.After(now) {
			return Decision{Allowed: true, Reason: ReasonUnblocked}
		}
		return Decision{Allowed: false, Reason: ReasonBlockedTemporary}
	}
	if within(r.LastTriggerAt, now, HourWindow) && r.HourCount >= l.PerHour {
		return Decision{Allowed: false, Reason: ReasonHourLimit}
	}
	if within(r.LastTriggerAt, now, DayWindow) && r.DayCount >= l.PerDay {
		return Decision{Allowed: false, Reason: ReasonDayLimit}
	}
	return Decision{Allowed: true, Reason: ReasonOK}
}

// Advance returns r after one more trigger at now
// Each counter restarts at 1 when the previous trigger fell outside its window
func Advance(r Record, now time.Time) Record {
	if within(r.LastTriggerAt, now, HourWindow) {
		r.HourCount++
	} else {
		r.HourCount = 1
	}
	if within(r.LastTriggerAt, now, DayWindow) {
		r.DayCount++
	} else {
		r.DayCount = 1
	}
	r.TotalCount++
	t := now
	r.LastTriggerAt = &t
	return r
}

// BlockInput is the body of a block request; nil Hours blocks until lifted
type BlockInput struct {
	Reason string `json:"reason" validate:"max=200"`
	Hours  *int   `json:"hours,omitempty" validate:"omitempty,min=1,max=8760"`
}

// BanInput is the body of a permanent block request
type BanInput struct {
	Reason string `json:"reason" validate:"max=200"`
}

// LimitView is the limit endpoint's response
type LimitView struct {
	SenderID string   `json:"sender_id"`
	Known    bool     `json:"known"`
	Decision Decision `json:"decision"`
	Record   *Record  `json:"record,omitempty"`
}
