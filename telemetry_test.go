package goKiosk

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/ramptrack/goKiosk/store"
)

func TestTelemetryLoginEvents(t *testing.T) {
	sink := NewChannelSink(16)
	engine, err := New().
		WithRoster(testRoster(t)).
		WithStore(store.NewMemKV()).
		WithTelemetrySink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	engine.Hydrate()

	if err := engine.LoginWithBadge(context.Background(), "B100"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	var login Event
	deadline := time.After(2 * time.Second)
	for login.EventType == "" {
		select {
		case ev := <-sink.Events():
			if ev.EventType == EventLogin {
				login = ev
			}
		case <-deadline:
			t.Fatal("no login event delivered")
		}
	}

	if !login.Success || login.BadgeID != "B100" {
		t.Fatalf("login event = %+v", login)
	}
	if login.ID == "" || login.ClientID == "" {
		t.Fatal("event missing identifiers")
	}
}

func TestJSONWriterSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)
	sink.Emit(context.Background(), Event{ID: "e1", EventType: EventLogout, Success: true})

	line := strings.TrimSpace(buf.String())
	var decoded Event
	if err := json.Unmarshal([]byte(line), &decoded); err != nil {
		t.Fatalf("sink output not valid JSON: %v", err)
	}
	if decoded.EventType != EventLogout {
		t.Fatalf("decoded = %+v", decoded)
	}
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	blocking := make(chan struct{})
	sink := sinkFunc(func(ctx context.Context, ev Event) {
		<-blocking
	})
	d := newTelemetryDispatcher(TelemetryConfig{
		Enabled:    true,
		BufferSize: 1,
		DropIfFull: true,
	}, sink)
	defer d.Close()
	defer close(blocking)

	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), Event{EventType: EventRefresh})
	}
	if d.Dropped() == 0 {
		t.Fatal("full buffer dropped nothing")
	}
}

func TestDispatcherDisabled(t *testing.T) {
	d := newTelemetryDispatcher(TelemetryConfig{Enabled: false}, nil)
	if d != nil {
		t.Fatal("disabled telemetry should return a nil dispatcher")
	}
	// All methods are nil-safe.
	d.Emit(context.Background(), Event{})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher dropped events")
	}
}

type sinkFunc func(ctx context.Context, event Event)

func (f sinkFunc) Emit(ctx context.Context, event Event) {
	f(ctx, event)
}

func TestMetricsDisabledIsNoOp(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricLoginSuccess)
	if snap := m.Snapshot(); len(snap) != 0 {
		t.Fatalf("disabled metrics produced %v", snap)
	}
}

func TestMetricsCounts(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricGateAllowed)
	m.Inc(MetricGateAllowed)
	m.Inc(MetricLogout)
	snap := m.Snapshot()
	if snap[MetricGateAllowed] != 2 || snap[MetricLogout] != 1 {
		t.Fatalf("snapshot = %v", snap)
	}
}
