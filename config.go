package goKiosk

import (
	"errors"
	"time"
)

// Config defines the tunable behavior of the session core.
//
// Config instances are intended to be configured during initialization and
// then treated as immutable.
type Config struct {
	Refresh   RefreshConfig
	Gate      GateConfig
	Notify    NotifyConfig
	Overlay   OverlayConfig
	Telemetry TelemetryConfig
	Metrics   MetricsConfig
	Store     StoreConfig
}

/*
====================================
REFRESH CONFIG
====================================
*/

// RefreshConfig bounds the background session rebuild.
type RefreshConfig struct {
	// Timeout is the race deadline for one RefreshSession rebuild. A rebuild
	// that has not produced a session by then loses and is abandoned.
	Timeout time.Duration
}

/*
====================================
GATE CONFIG
====================================
*/

// GateConfig bounds the validation gate's optional freshness probe.
type GateConfig struct {
	// ProbeTimeout caps the backend freshness check. A probe that exceeds it
	// is classified as backend unavailability, which never blocks.
	ProbeTimeout time.Duration
}

/*
====================================
NOTIFY CONFIG
====================================
*/

// NotifyConfig bounds the advisory post-login notification.
type NotifyConfig struct {
	// Timeout caps the detached notification call. Expiry abandons the call;
	// it never reverts the session or surfaces an error.
	Timeout time.Duration
}

/*
====================================
OVERLAY CONFIG
====================================
*/

// OverlayConfig shapes the refresh/reconnect overlay timing.
type OverlayConfig struct {
	// MinShow is how long the overlay must stay up before a manual dismiss
	// is honored.
	MinShow time.Duration
	// MaxShow force-hides the overlay even while the underlying signal is
	// still raised.
	MaxShow time.Duration
}

/*
====================================
TELEMETRY CONFIG
====================================
*/

// TelemetryConfig controls the advisory event dispatcher.
type TelemetryConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events instead of blocking the emitting goroutine
	// when the buffer is full.
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

/*
====================================
STORE CONFIG
====================================
*/

// StoreConfig shapes the Redis-backed store when the builder constructs one
// from a client via [Builder.WithRedis].
type StoreConfig struct {
	RedisPrefix string
	// RedisTTL of zero keeps the record until logout.
	RedisTTL time.Duration
}

func defaultConfig() Config {
	return Config{
		Refresh: RefreshConfig{Timeout: 5 * time.Second},
		Gate:    GateConfig{ProbeTimeout: 5 * time.Second},
		Notify:  NotifyConfig{Timeout: 10 * time.Second},
		Overlay: OverlayConfig{
			MinShow: 3 * time.Second,
			MaxShow: 10 * time.Second,
		},
		Telemetry: TelemetryConfig{
			Enabled:    true,
			BufferSize: 64,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{Enabled: true},
		Store:   StoreConfig{RedisPrefix: "ramptrack"},
	}
}

func validateConfig(cfg Config) error {
	if cfg.Refresh.Timeout <= 0 {
		return errors.New("config: refresh timeout must be positive")
	}
	if cfg.Gate.ProbeTimeout <= 0 {
		return errors.New("config: gate probe timeout must be positive")
	}
	if cfg.Notify.Timeout <= 0 {
		return errors.New("config: notify timeout must be positive")
	}
	if cfg.Overlay.MinShow < 0 || cfg.Overlay.MaxShow <= 0 {
		return errors.New("config: overlay durations must be positive")
	}
	if cfg.Overlay.MinShow > cfg.Overlay.MaxShow {
		return errors.New("config: overlay min show exceeds max show")
	}
	if cfg.Telemetry.Enabled && cfg.Telemetry.BufferSize <= 0 {
		return errors.New("config: telemetry buffer size must be positive")
	}
	return nil
}
