// Package overlay aggregates the "session refreshing" and "request in
// flight" signals into one blocking-but-dismissible overlay state.
//
// The notifier holds timestamps and answers queries against an injected
// clock; it runs no background timers, so its behavior is fully
// deterministic under test and there is nothing to shut down.
package overlay

import (
	"sync"
	"time"
)

// Notifier combines two independently-sourced busy signals by logical OR
// into a visibility signal with a minimum and a maximum display window.
//
// The minimum window keeps a flash of the overlay from being dismissed
// before the user can read it; the maximum window guarantees the UI never
// looks permanently stuck, force-hiding even while a signal is still
// raised. Re-entry of the combined signal resets both windows.
type Notifier struct {
	mu    sync.Mutex
	clock func() time.Time

	minShow time.Duration
	maxShow time.Duration

	refreshing bool
	inFlight   bool

	raised       bool
	raisedAt     time.Time
	hasDismissal bool
}

// New creates a notifier. A nil clock defaults to time.Now.
func New(minShow, maxShow time.Duration, clock func() time.Time) *Notifier {
	if clock == nil {
		clock = time.Now
	}
	return &Notifier{
		clock:   clock,
		minShow: minShow,
		maxShow: maxShow,
	}
}

// SetRefreshing feeds the session-refresh busy signal.
func (n *Notifier) SetRefreshing(busy bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.refreshing = busy
	n.recomputeLocked()
}

// SetRequestInFlight feeds the write-path busy signal.
func (n *Notifier) SetRequestInFlight(busy bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.inFlight = busy
	n.recomputeLocked()
}

func (n *Notifier) recomputeLocked() {
	combined := n.refreshing || n.inFlight
	if combined && !n.raised {
		n.raised = true
		n.raisedAt = n.clock()
		n.hasDismissal = false
	}
	if !combined {
		n.raised = false
	}
}

// Visible reports whether the overlay should currently be shown.
func (n *Notifier) Visible() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.raised || n.hasDismissal {
		return false
	}
	return n.clock().Sub(n.raisedAt) < n.maxShow
}

// Dismiss attempts a manual dismissal. It is a no-op, returning false, until
// the minimum display window has elapsed since the overlay became visible.
func (n *Notifier) Dismiss() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.raised || n.hasDismissal {
		return false
	}
	now := n.clock()
	if now.Sub(n.raisedAt) < n.minShow {
		return false
	}
	n.hasDismissal = true
	return true
}
