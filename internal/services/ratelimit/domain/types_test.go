package domain

import (
	"testing"
	"time"
)

var (
	now    = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	limits = Limits{PerHour: 3, PerDay: 10}
)

func ago(d time.Duration) *time.Time {
	t := now.Add(-d)
	return &t
}

func TestDecide(t *testing.T) {
	cases := []struct {
		name string
		rec  Record
		want Decision
	}{
		{"under hour limit", Record{HourCount: 2, DayCount: 2, LastTriggerAt: ago(10 * time.Minute)}, Decision{true, ReasonOK}},
		{"at hour limit", Record{HourCount: 3, DayCount: 3, LastTriggerAt: ago(10 * time.Minute)}, Decision{false, ReasonHourLimit}},
		{"hour limit expired", Record{HourCount: 3, DayCount: 3, LastTriggerAt: ago(61 * time.Minute)}, Decision{true, ReasonOK}},
		{"at day limit", Record{HourCount: 1, DayCount: 10, LastTriggerAt: ago(2 * time.Hour)}, Decision{false, ReasonDayLimit}},
		{"day limit expired", Record{HourCount: 9, DayCount: 10, LastTriggerAt: ago(25 * time.Hour)}, Decision{true, ReasonOK}},
		{"never triggered", Record{HourCount: 50}, Decision{true, ReasonOK}},
		{"permanent flag", Record{BlockedPermanently: true}, Decision{false, ReasonBlockedPermanent}},
		{"indefinite block", Record{IsBlocked: true}, Decision{false, ReasonBlockedTemporary}},
		{"future block", Record{IsBlocked: true, BlockedUntil: ago(-time.Hour)}, Decision{false, ReasonBlockedTemporary}},
		{"expired block", Record{IsBlocked: true, BlockedUntil: ago(time.Second), HourCount: 3, LastTriggerAt: ago(time.Minute)}, Decision{true, ReasonUnblocked}},
	}
	for _, c := range cases {
		if got := Decide(c.rec, now, limits); got != c.want {
			t.Fatalf("%s: got %+v want %+v", c.name, got, c.want)
		}
	}
}

func TestAdvance(t *testing.T) {
	r := Advance(Record{}, now)
	if r.HourCount != 1 || r.DayCount != 1 || r.TotalCount != 1 || !r.LastTriggerAt.Equal(now) {
		t.Fatalf("first trigger: %+v", r)
	}

	r = Advance(Record{HourCount: 2, DayCount: 5, TotalCount: 40, LastTriggerAt: ago(30 * time.Minute)}, now)
	if r.HourCount != 3 || r.DayCount != 6 || r.TotalCount != 41 {
		t.Fatalf("same hour: %+v", r)
	}

	r = Advance(Record{HourCount: 3, DayCount: 5, TotalCount: 40, LastTriggerAt: ago(3 * time.Hour)}, now)
	if r.HourCount != 1 || r.DayCount != 6 {
		t.Fatalf("new hour same day: %+v", r)
	}

	r = Advance(Record{HourCount: 3, DayCount: 9, TotalCount: 40, LastTriggerAt: ago(48 * time.Hour)}, now)
	if r.HourCount != 1 || r.DayCount != 1 || r.TotalCount != 41 {
		t.Fatalf("new day: %+v", r)
	}
}
