package goKiosk

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// RefreshSession rebuilds the session from the store in the background,
// racing the rebuild against [RefreshConfig.Timeout]. It returns true only
// when the rebuild wins the race and installs its result.
//
// At most one refresh is in flight: a call arriving while another is running
// returns false immediately without queueing. Any error inside the rebuild
// is caught and reported as a plain false; the current session is left
// unchanged on every failure path.
func (e *Engine) RefreshSession(ctx context.Context) bool {
	if !e.refreshing.CompareAndSwap(false, true) {
		e.metrics.Inc(MetricRefreshBusy)
		return false
	}
	defer func() {
		e.refreshing.Store(false)
		e.mu.Lock()
		e.broadcastLocked()
		e.mu.Unlock()
	}()

	e.mu.Lock()
	gen := e.generation
	e.broadcastLocked()
	e.mu.Unlock()

	result := make(chan refreshResult, 1)
	go e.rebuild(result)

	var res refreshResult
	select {
	case res = <-result:
	case <-time.After(e.cfg.Refresh.Timeout):
		// The rebuild lost the race. It is abandoned, not cancelled: its
		// result channel is buffered and nobody installs what it produces.
		e.log.Warn("session refresh timed out")
		e.metrics.Inc(MetricRefreshFailure)
		e.emitRefreshEvent(ctx, false, "timeout")
		return false
	case <-ctx.Done():
		e.metrics.Inc(MetricRefreshFailure)
		e.emitRefreshEvent(ctx, false, "cancelled")
		return false
	}

	if res.err != nil {
		e.log.Warn("session refresh failed", zap.Error(res.err))
		e.metrics.Inc(MetricRefreshFailure)
		e.emitRefreshEvent(ctx, false, res.err.Error())
		return false
	}

	if !e.installRefreshed(gen, res.session) {
		// A login or logout landed while the rebuild ran; its result is
		// newer than ours and must not be clobbered.
		e.metrics.Inc(MetricRefreshFailure)
		e.emitRefreshEvent(ctx, false, "superseded")
		return false
	}

	e.metrics.Inc(MetricRefreshSuccess)
	e.emitRefreshEvent(ctx, true, "")
	return true
}

type refreshResult struct {
	session Session
	err     error
}

func (e *Engine) rebuild(result chan<- refreshResult) {
	defer func() {
		if r := recover(); r != nil {
			result <- refreshResult{err: fmt.Errorf("rebuild panicked: %v", r)}
		}
	}()

	rec, ok := e.store.Read()
	if !ok {
		result <- refreshResult{err: fmt.Errorf("no persisted session to rebuild from")}
		return
	}
	result <- refreshResult{session: sessionFromRecord(rec)}
}

// installRefreshed installs the rebuilt session only when no other
// transition happened since the refresh started.
func (e *Engine) installRefreshed(gen uint64, sess Session) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.generation != gen {
		return false
	}
	e.session = &sess
	e.generation++
	e.store.Write(recordFromSession(sess))
	e.broadcastLocked()
	return true
}

func (e *Engine) emitRefreshEvent(ctx context.Context, success bool, detail string) {
	event := e.newEvent(EventRefresh)
	event.Success = success
	event.Error = detail
	if sess, ok := e.Session(); ok {
		event.Subject = sess.Subject
	}
	e.telemetry.Emit(ctx, event)
}
