package goKiosk

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ramptrack/goKiosk/roster"
	"github.com/ramptrack/goKiosk/store"
)

// newEvent stamps an advisory event with this engine's identity and clock.
func (e *Engine) newEvent(eventType string) Event {
	return Event{
		ID:        uuid.NewString(),
		Timestamp: e.clock().UTC(),
		EventType: eventType,
		ClientID:  e.clientID,
	}
}

// loginFailureMessage is the user-facing message recorded on a rejected
// login. It is deliberately identical for bad identifiers and bad passwords.
const loginFailureMessage = "Invalid badge or credentials. Check your entry and try again."

// Engine owns the in-memory session and orchestrates hydration, login,
// logout, and background refresh. It is the single owner of session state:
// all mutation goes through the named operations, and every transition
// replaces the Session value and persists it in the same step.
//
// Engine instances are built through [Builder.Build] and are safe for
// concurrent use.
type Engine struct {
	cfg       Config
	roster    *roster.Roster
	store     *store.SessionStore
	log       *zap.Logger
	metrics   *Metrics
	telemetry *telemetryDispatcher
	notifier  LoginNotifier
	prober    Prober
	clock     func() time.Time
	clientID  string

	hydrateOnce sync.Once
	refreshing  atomic.Bool

	mu         sync.Mutex
	ready      bool
	session    *Session
	loginErr   string
	generation uint64
	watchers   map[int]chan StateSnapshot
	nextWatch  int
}

// Close shuts down the telemetry dispatcher, draining buffered events.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.telemetry.Close()
}

// TelemetryDropped reports how many advisory events were dropped on a full
// buffer.
func (e *Engine) TelemetryDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.telemetry.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all counters.
func (e *Engine) MetricsSnapshot() map[MetricID]uint64 {
	if e == nil {
		return map[MetricID]uint64{}
	}
	return e.metrics.Snapshot()
}

// Hydrate reconstructs a session from the store. It runs its work exactly
// once per process; later calls only report session presence. Whatever
// happens inside, readiness turns true: a kiosk that cannot read its own
// storage still has to reach the login screen.
func (e *Engine) Hydrate() bool {
	e.hydrateOnce.Do(e.hydrate)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session != nil
}

func (e *Engine) hydrate() {
	var sess *Session

	func() {
		defer func() {
			if r := recover(); r != nil {
				e.log.Error("hydration panicked; starting without a session", zap.Any("panic", r))
				sess = nil
			}
		}()
		if rec, ok := e.store.Read(); ok {
			s := sessionFromRecord(rec)
			sess = &s
		}
	}()

	event := e.newEvent(EventHydrate)
	e.mu.Lock()
	e.ready = true
	e.session = sess
	if sess != nil {
		e.metrics.Inc(MetricHydrateSession)
		event.Subject = sess.Subject
		event.Success = true
	} else {
		e.metrics.Inc(MetricHydrateEmpty)
	}
	e.broadcastLocked()
	e.mu.Unlock()

	e.telemetry.Emit(context.Background(), event)
}

// Login validates the identifier/password pair against the roster. On
// success the session transitions and persists before any network I/O; the
// advisory notification runs afterward on a detached goroutine. On failure a
// user-facing message is recorded and any existing session is left exactly
// as it was.
func (e *Engine) Login(ctx context.Context, identifier, password string) error {
	entry := e.roster.ValidateCredentials(identifier, password)
	if entry == nil {
		e.recordLoginFailure(ctx, identifier, "")
		return ErrInvalidCredentials
	}
	e.completeLogin(ctx, entry)
	return nil
}

// LoginWithBadge signs in from a badge scan. Badge possession is the
// credential; there is no password on this path.
func (e *Engine) LoginWithBadge(ctx context.Context, badgeID string) error {
	entry := e.roster.ValidateBadge(badgeID)
	if entry == nil {
		e.recordLoginFailure(ctx, "", badgeID)
		return ErrBadgeUnknown
	}
	e.completeLogin(ctx, entry)
	return nil
}

func (e *Engine) recordLoginFailure(ctx context.Context, identifier, badgeID string) {
	e.metrics.Inc(MetricLoginFailure)

	e.mu.Lock()
	e.loginErr = loginFailureMessage
	e.broadcastLocked()
	e.mu.Unlock()

	event := e.newEvent(EventLogin)
	event.Subject = identifier
	event.BadgeID = badgeID
	event.Error = "credential validation failed"
	e.telemetry.Emit(ctx, event)
}

func (e *Engine) completeLogin(ctx context.Context, entry *roster.Entry) {
	sess := sessionFromEntry(entry)

	e.mu.Lock()
	e.session = &sess
	e.loginErr = ""
	e.generation++
	e.store.Write(recordFromSession(sess))
	e.broadcastLocked()
	e.mu.Unlock()

	e.metrics.Inc(MetricLoginSuccess)

	event := e.newEvent(EventLogin)
	event.Subject = sess.Subject
	event.BadgeID = sess.BadgeID
	event.Success = true
	e.telemetry.Emit(ctx, event)

	if e.notifier != nil {
		// Advisory only. The session is already live and persisted; this
		// call gets its own bounded context and its outcome is never allowed
		// to revert the transition.
		go e.notifyLogin(sess)
	}
}

func (e *Engine) notifyLogin(sess Session) {
	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.Notify.Timeout)
	defer cancel()
	if err := e.notifier.NotifyLogin(ctx, sess); err != nil {
		e.log.Warn("advisory login notification failed",
			zap.String("subject", sess.Subject),
			zap.Error(err))
	}
}

// Logout clears the in-memory session and the store synchronously.
// Idempotent.
func (e *Engine) Logout(ctx context.Context) {
	e.mu.Lock()
	had := e.session != nil
	var subject string
	if had {
		subject = e.session.Subject
	}
	e.session = nil
	e.generation++
	e.store.Clear()
	e.broadcastLocked()
	e.mu.Unlock()

	if !had {
		return
	}
	e.metrics.Inc(MetricLogout)

	event := e.newEvent(EventLogout)
	event.Subject = subject
	event.Success = true
	e.telemetry.Emit(ctx, event)
}

// ClearLoginError clears only the last recorded login error message.
func (e *Engine) ClearLoginError() {
	e.mu.Lock()
	e.loginErr = ""
	e.broadcastLocked()
	e.mu.Unlock()
}

// Ready reports whether hydration has completed. Readiness and session
// presence are orthogonal.
func (e *Engine) Ready() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ready
}

// Session returns a copy of the current session, and whether one exists.
func (e *Engine) Session() (Session, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return Session{}, false
	}
	return *e.session, true
}

// LoginError returns the last recorded user-facing login error, empty when
// none is pending.
func (e *Engine) LoginError() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loginErr
}

// Refreshing reports whether a background refresh is in flight.
func (e *Engine) Refreshing() bool {
	return e.refreshing.Load()
}

// Snapshot returns the engine's observable state as one consistent value.
func (e *Engine) Snapshot() StateSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() StateSnapshot {
	snap := StateSnapshot{
		Ready:      e.ready,
		LoginError: e.loginErr,
		Refreshing: e.refreshing.Load(),
	}
	if e.session != nil {
		snap.HasSession = true
		snap.Session = *e.session
	}
	return snap
}

// Watch registers a subscriber that receives a [StateSnapshot] after every
// transition, starting with the current state. Slow subscribers miss
// intermediate snapshots rather than block the engine. The returned cancel
// func unregisters and closes the channel.
func (e *Engine) Watch() (<-chan StateSnapshot, func()) {
	ch := make(chan StateSnapshot, 8)

	e.mu.Lock()
	if e.watchers == nil {
		e.watchers = make(map[int]chan StateSnapshot)
	}
	id := e.nextWatch
	e.nextWatch++
	e.watchers[id] = ch
	ch <- e.snapshotLocked()
	e.mu.Unlock()

	cancel := func() {
		e.mu.Lock()
		if existing, ok := e.watchers[id]; ok {
			delete(e.watchers, id)
			close(existing)
		}
		e.mu.Unlock()
	}
	return ch, cancel
}

func (e *Engine) broadcastLocked() {
	if len(e.watchers) == 0 {
		return
	}
	snap := e.snapshotLocked()
	for _, ch := range e.watchers {
		select {
		case ch <- snap:
		default:
		}
	}
}

func sessionFromRecord(rec store.Record) Session {
	return NewSession(rec.Subject, ParseRole(rec.Role), rec.BadgeID, rec.DisplayName)
}

func recordFromSession(sess Session) store.Record {
	return store.Record{
		Subject:     sess.Subject,
		Role:        sess.Role.String(),
		DisplayName: sess.DisplayName,
		BadgeID:     sess.BadgeID,
	}
}

func sessionFromEntry(entry *roster.Entry) Session {
	subject := entry.Email
	if subject == "" {
		subject = entry.BadgeID
	}
	return NewSession(subject, ParseRole(entry.Role), entry.BadgeID, entry.DisplayName)
}
