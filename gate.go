package goKiosk

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// errorClass partitions gate-path errors per the error taxonomy: only
// confirmed authentication failures block; everything else favors
// availability and defers hard authorization to the server.
type errorClass uint8

const (
	classAvailability errorClass = iota
	classAuthFailure
)

var authFailureMarkers = []string{
	"unauthorized",
	"forbidden",
	"expired delegation",
	"delegation expired",
	"401",
	"403",
}

// classifyAuthError decides whether an error is a genuine authentication
// failure. Sentinels are checked first; wrapped third-party errors fall back
// to message inspection. The default is availability: an unrecognized error
// never blocks a write.
func classifyAuthError(err error) errorClass {
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden) || errors.Is(err, ErrDelegationExpired) {
		return classAuthFailure
	}
	if errors.Is(err, ErrBackendUnavailable) {
		return classAvailability
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range authFailureMarkers {
		if strings.Contains(msg, marker) {
			return classAuthFailure
		}
	}
	return classAvailability
}

// EnsureValid is the pre-flight gate for every state-mutating call. It
// returns true to proceed and false to block.
//
// The only unconditional blocking condition is the absence of a local
// session. A supplied expectedSubjectID that does not match the session is
// logged and counted but does not block: ownership is enforced server-side,
// and the client gate deliberately favors availability. Errors from the
// freshness probe block only when classified as genuine authentication
// failures, in which case local storage is purged before returning; the
// caller owns any navigation after that.
func (e *Engine) EnsureValid(ctx context.Context, expectedSubjectID string) bool {
	sess, ok := e.Session()
	if !ok {
		e.log.Warn("write blocked: no local session")
		e.metrics.Inc(MetricGateBlocked)
		e.emitGateBlocked(ctx, expectedSubjectID, "no session")
		return false
	}

	if expectedSubjectID != "" && !sess.Matches(expectedSubjectID) {
		e.log.Warn("owner hint does not match session; proceeding anyway",
			zap.String("expected", expectedSubjectID),
			zap.String("subject", sess.Subject),
			zap.String("badge", sess.BadgeID))
		e.metrics.Inc(MetricGateOwnerMismatch)
	}

	if e.prober != nil {
		if err := e.probe(ctx, sess); err != nil {
			if classifyAuthError(err) == classAuthFailure {
				e.log.Warn("write blocked: authentication failure confirmed", zap.Error(err))
				e.metrics.Inc(MetricGateBlocked)
				e.emitGateBlocked(ctx, expectedSubjectID, err.Error())
				e.PurgeOnAuthFailure()
				return false
			}
			e.log.Warn("freshness probe failed; continuing on local trust", zap.Error(err))
		}
	}

	e.metrics.Inc(MetricGateAllowed)
	return true
}

// probe races the freshness check against Config.Gate.ProbeTimeout. The
// prober is asked to honor ctx cancellation, but a prober that ignores it
// must not hold the gate hostage: the call runs in its own goroutine and a
// lost race is classified as availability.
func (e *Engine) probe(ctx context.Context, sess Session) error {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Gate.ProbeTimeout)
	defer cancel()

	result := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				// A panicking probe is a broken probe, not a broken session.
				result <- ErrBackendUnavailable
			}
		}()
		result <- e.prober.Probe(ctx, sess)
	}()

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		// The probe lost the race. It is abandoned, not awaited: its result
		// channel is buffered and nobody reads what it produces.
		return ErrBackendUnavailable
	}
}

// PurgeOnAuthFailure clears all local session state, canonical and legacy
// storage keys included. It performs no navigation; deciding where to send
// the user afterward is the caller's responsibility.
func (e *Engine) PurgeOnAuthFailure() {
	e.mu.Lock()
	e.session = nil
	e.generation++
	e.store.PurgeAll()
	e.broadcastLocked()
	e.mu.Unlock()
	e.metrics.Inc(MetricAuthFailurePurge)
}

func (e *Engine) emitGateBlocked(ctx context.Context, expectedSubjectID, reason string) {
	event := e.newEvent(EventGateBlocked)
	event.Subject = expectedSubjectID
	event.Error = reason
	e.telemetry.Emit(ctx, event)
}
