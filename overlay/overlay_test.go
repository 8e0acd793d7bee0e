package overlay

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestNotifier(t *testing.T) (*Notifier, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	return New(3*time.Second, 10*time.Second, clock.Now), clock
}

func TestOverlayVisibilityWindow(t *testing.T) {
	n, clock := newTestNotifier(t)

	if n.Visible() {
		t.Fatal("visible with no signal")
	}

	n.SetRefreshing(true)
	if !n.Visible() {
		t.Fatal("not visible at t=0 with the signal raised")
	}

	// Dismiss attempts before the minimum window are no-ops.
	if n.Dismiss() {
		t.Fatal("dismiss honored at t=0")
	}
	clock.Advance(2 * time.Second)
	if n.Dismiss() {
		t.Fatal("dismiss honored at t=2s")
	}
	if !n.Visible() {
		t.Fatal("rejected dismiss hid the overlay")
	}

	// After the minimum window, dismiss works.
	clock.Advance(2 * time.Second)
	if !n.Dismiss() {
		t.Fatal("dismiss rejected at t=4s")
	}
	if n.Visible() {
		t.Fatal("visible after an honored dismiss")
	}
}

func TestOverlayMaxShowForcesHide(t *testing.T) {
	n, clock := newTestNotifier(t)
	n.SetRefreshing(true)

	clock.Advance(9 * time.Second)
	if !n.Visible() {
		t.Fatal("hidden before the maximum window")
	}

	clock.Advance(2 * time.Second)
	if n.Visible() {
		t.Fatal("still visible past the maximum window with the signal raised")
	}
}

func TestOverlaySignalOR(t *testing.T) {
	n, _ := newTestNotifier(t)

	n.SetRefreshing(true)
	n.SetRequestInFlight(true)
	if !n.Visible() {
		t.Fatal("not visible with both signals")
	}

	// One signal dropping is not enough.
	n.SetRefreshing(false)
	if !n.Visible() {
		t.Fatal("hidden while a request is still in flight")
	}

	n.SetRequestInFlight(false)
	if n.Visible() {
		t.Fatal("visible with both signals cleared")
	}
}

func TestOverlayReentryResetsWindows(t *testing.T) {
	n, clock := newTestNotifier(t)

	n.SetRefreshing(true)
	clock.Advance(5 * time.Second)
	if !n.Dismiss() {
		t.Fatal("dismiss rejected after the minimum window")
	}

	// Signal clears, then re-raises: a fresh overlay with fresh windows.
	n.SetRefreshing(false)
	n.SetRequestInFlight(true)
	if !n.Visible() {
		t.Fatal("re-entry not visible")
	}
	if n.Dismiss() {
		t.Fatal("re-entry inherited the elapsed minimum window")
	}
	clock.Advance(3 * time.Second)
	if !n.Dismiss() {
		t.Fatal("dismiss rejected after re-entry minimum window")
	}
}

func TestOverlayMaxShowResetOnReentry(t *testing.T) {
	n, clock := newTestNotifier(t)

	n.SetRefreshing(true)
	clock.Advance(11 * time.Second)
	if n.Visible() {
		t.Fatal("visible past max show")
	}

	n.SetRefreshing(false)
	n.SetRefreshing(true)
	if !n.Visible() {
		t.Fatal("re-entry did not reset the maximum window")
	}
}
