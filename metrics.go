package goKiosk

import "sync/atomic"

// MetricID identifies one counter in the in-process metrics set.
type MetricID uint16

const (
	// MetricLoginSuccess counts successful credential or badge logins.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts rejected logins.
	MetricLoginFailure
	// MetricLogout counts logout calls that actually cleared a session.
	MetricLogout
	// MetricHydrateSession counts hydrations that recovered a session.
	MetricHydrateSession
	// MetricHydrateEmpty counts hydrations that found no usable record.
	MetricHydrateEmpty
	// MetricRefreshSuccess counts refresh rebuilds that won their race.
	MetricRefreshSuccess
	// MetricRefreshFailure counts refresh rebuilds that failed or timed out.
	MetricRefreshFailure
	// MetricRefreshBusy counts refresh calls rejected because one was
	// already in flight.
	MetricRefreshBusy
	// MetricGateAllowed counts gate decisions that let the write proceed.
	MetricGateAllowed
	// MetricGateBlocked counts gate decisions that blocked the write.
	MetricGateBlocked
	// MetricGateOwnerMismatch counts ownership-hint mismatches, which are
	// logged but never block.
	MetricGateOwnerMismatch
	// MetricAuthFailurePurge counts storage purges on confirmed
	// authentication failures.
	MetricAuthFailurePurge

	metricIDCount
)

// Metrics holds atomic counters. When disabled, every operation is a no-op.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]atomic.Uint64
}

// NewMetrics creates a Metrics instance per cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Inc increments one counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	m.counters[id].Add(1)
}

// Snapshot returns a point-in-time copy of all counters.
func (m *Metrics) Snapshot() map[MetricID]uint64 {
	out := make(map[MetricID]uint64, metricIDCount)
	if m == nil || !m.enabled {
		return out
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		out[id] = m.counters[id].Load()
	}
	return out
}
