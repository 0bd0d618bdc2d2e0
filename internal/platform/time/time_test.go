package time

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSleep(t *testing.T) {
	if err := Sleep(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("Sleep: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled sleep = %v", err)
	}
	if err := Sleep(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("zero sleep should still report ctx: %v", err)
	}
}

func TestFixedAndPtr(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	if !Fixed(at)().Equal(at) {
		t.Fatalf("Fixed clock drifted")
	}
	if Ptr(time.Time{}) != nil || Ptr(at) == nil {
		t.Fatalf("Ptr mismatch")
	}
	if System().Location() != time.UTC {
		t.Fatalf("System should be UTC")
	}
}
