// Package testkit holds helpers for tests that patch package-level hooks
package testkit

import (
	"strings"
	"sync"
	"testing"
)

var hooks sync.Mutex

// Swap points *target at replacement until the test ends
func Swap[T any](t *testing.T, target *T, replacement T) {
	t.Helper()
	prev := *target
	*target = replacement
	t.Cleanup(func() { *target = prev })
}

// Serial holds a process-wide lock for the rest of the test
// Tests that Swap shared hooks call it first so parallel packages do not race on them
func Serial(t *testing.T) {
	t.Helper()
	hooks.Lock()
	t.Cleanup(hooks.Unlock)
}

// MustPanic fails the test unless fn panics
func MustPanic(t *testing.T, fn func()) {
	t.Helper()
	if !panics(fn) {
		t.Fatal("expected a panic")
	}
}

// MustNotPanic fails the test if fn panics
func MustNotPanic(t *testing.T, fn func()) {
	t.Helper()
	if panics(fn) {
		t.Fatal("unexpected panic")
	}
}

func panics(fn func()) (did bool) {
	defer func() { did = recover() != nil }()
	fn()
	return false
}

// MustContain fails with the whole of out when sub is missing; log lines are easier to read that way
func MustContain(t *testing.T, out, sub string) {
	t.Helper()
	if !strings.Contains(out, sub) {
		t.Fatalf("missing %q in output:\n%s", sub, out)
	}
}
