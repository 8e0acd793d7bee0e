package goKiosk

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ramptrack/goKiosk/roster"
	"github.com/ramptrack/goKiosk/store"
)

// LoginNotifier is the advisory post-login notification target. The engine
// calls it on a detached goroutine with a bounded context after a login has
// already transitioned and persisted; errors and timeouts are logged and
// otherwise ignored.
type LoginNotifier interface {
	NotifyLogin(ctx context.Context, session Session) error
}

// Prober is the gate's optional backend freshness check. An error return is
// classified: genuine authentication failures block the caller, everything
// else is treated as backend unavailability and does not.
type Prober interface {
	Probe(ctx context.Context, session Session) error
}

// Builder assembles an [Engine]. Zero or one call to each WithX method,
// then exactly one Build.
type Builder struct {
	config   Config
	roster   *roster.Roster
	kv       store.KV
	redis    *redis.Client
	logger   *zap.Logger
	sink     Sink
	notifier LoginNotifier
	prober   Prober
	clock    func() time.Time

	built bool
}

// New returns a builder seeded with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the default configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRoster sets the credential roster. Required.
func (b *Builder) WithRoster(r *roster.Roster) *Builder {
	b.roster = r
	return b
}

// WithStore sets the session persistence backend.
func (b *Builder) WithStore(kv store.KV) *Builder {
	b.kv = kv
	return b
}

// WithRedis sets a Redis client used to build the store backend when no
// explicit backend was supplied via [Builder.WithStore].
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithLogger sets the structured logger. Defaults to zap.NewNop().
func (b *Builder) WithLogger(log *zap.Logger) *Builder {
	b.logger = log
	return b
}

// WithTelemetrySink sets the advisory event sink. Defaults to [NoOpSink].
func (b *Builder) WithTelemetrySink(sink Sink) *Builder {
	b.sink = sink
	return b
}

// WithLoginNotifier sets the advisory post-login notification target.
func (b *Builder) WithLoginNotifier(n LoginNotifier) *Builder {
	b.notifier = n
	return b
}

// WithProber sets the gate's backend freshness check.
func (b *Builder) WithProber(p Prober) *Builder {
	b.prober = p
	return b
}

// WithClock overrides the time source. Tests only.
func (b *Builder) WithClock(clock func() time.Time) *Builder {
	b.clock = clock
	return b
}

// Build validates the configuration and wiring and returns a ready-to-use
// engine. The engine still requires one [Engine.Hydrate] call before its
// readiness signal turns true.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, ErrAlreadyBuilt
	}
	if err := validateConfig(b.config); err != nil {
		return nil, err
	}
	if b.roster == nil {
		return nil, ErrRosterRequired
	}

	kv := b.kv
	if kv == nil {
		if b.redis == nil {
			return nil, ErrStoreRequired
		}
		kv = store.NewRedisKV(b.redis, b.config.Store.RedisPrefix, b.config.Store.RedisTTL)
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := b.clock
	if clock == nil {
		clock = time.Now
	}

	b.built = true

	return &Engine{
		cfg:       b.config,
		roster:    b.roster,
		store:     store.New(kv, logger.Named("store")),
		log:       logger,
		metrics:   NewMetrics(b.config.Metrics),
		telemetry: newTelemetryDispatcher(b.config.Telemetry, b.sink),
		notifier:  b.notifier,
		prober:    b.prober,
		clock:     clock,
		clientID:  uuid.NewString(),
	}, nil
}
