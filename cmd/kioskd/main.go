// Command kioskd runs a local end-to-end exercise of the session core: it
// serves a stub actor service, builds an engine against it, and walks the
// hydrate -> login -> refresh -> checkout -> logout cycle a real kiosk
// performs. Useful for smoke-testing a roster file and for demos without a
// deployed backend.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	goKiosk "github.com/ramptrack/goKiosk"
	"github.com/ramptrack/goKiosk/actor"
	"github.com/ramptrack/goKiosk/roster"
	"github.com/ramptrack/goKiosk/route"
	"github.com/ramptrack/goKiosk/store"
)

func main() {
	var (
		listen     = pflag.String("listen", "127.0.0.1:0", "stub actor service listen address")
		rosterPath = pflag.String("roster", "", "roster YAML file (required)")
		stateFile  = pflag.String("state-file", "kiosk-state.json", "session state file")
		redisAddr  = pflag.String("redis-addr", "", "redis address; when set, the session is stored in redis instead of the state file")
		badge      = pflag.String("badge", "", "badge id to sign in with (required)")
		equipment  = pflag.String("equipment", "TUG-12", "equipment id to check out")
	)
	pflag.Parse()

	if *rosterPath == "" || *badge == "" {
		fmt.Fprintln(os.Stderr, "--roster and --badge are required")
		os.Exit(2)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	r, err := roster.LoadFile(*rosterPath)
	if err != nil {
		logger.Fatal("roster load failed", zap.Error(err))
	}
	logger.Info("roster loaded", zap.Int("entries", r.Len()))

	baseURL, shutdown, err := startStubService(*listen, logger.Named("stub"))
	if err != nil {
		logger.Fatal("stub service failed to start", zap.Error(err))
	}
	defer shutdown()

	builder := goKiosk.New().
		WithRoster(r).
		WithLogger(logger.Named("engine")).
		WithLoginNotifier(actor.NewNotifier(baseURL)).
		WithTelemetrySink(goKiosk.NewJSONWriterSink(os.Stdout))

	if *redisAddr != "" {
		builder = builder.WithRedis(redis.NewClient(&redis.Options{Addr: *redisAddr}))
	} else {
		builder = builder.WithStore(store.NewFileKV(*stateFile))
	}

	engine, err := builder.Build()
	if err != nil {
		logger.Fatal("engine build failed", zap.Error(err))
	}
	defer engine.Close()

	ctx := context.Background()

	hadSession := engine.Hydrate()
	logger.Info("hydrated", zap.Bool("session", hadSession))

	if err := engine.LoginWithBadge(ctx, *badge); err != nil {
		logger.Fatal("badge login rejected", zap.Error(err), zap.String("message", engine.LoginError()))
	}
	sess, _ := engine.Session()
	logger.Info("signed in",
		zap.String("subject", sess.Subject),
		zap.String("display", sess.DisplayIdentity()),
		zap.String("role", sess.Role.String()))

	nav := route.NewNavigator(&memFragment{}, logger.Named("route"))
	logger.Info("routed", zap.String("screen", string(nav.SessionChanged(true))))

	if ok := engine.RefreshSession(ctx); !ok {
		logger.Warn("refresh did not complete")
	}

	client := actor.NewClient(baseURL, engine, actor.WithLogger(logger.Named("actor")))
	if err := client.CheckOut(ctx, actor.CheckOutRequest{
		EquipmentID: *equipment,
		OwnerBadge:  sess.BadgeID,
		GateCode:    "A3",
	}); err != nil {
		logger.Fatal("checkout failed", zap.Error(err))
	}
	logger.Info("checked out", zap.String("equipment", *equipment))

	engine.Logout(ctx)
	logger.Info("signed out")

	for id, count := range engine.MetricsSnapshot() {
		if count > 0 {
			logger.Info("metric", zap.Uint16("id", uint16(id)), zap.Uint64("count", count))
		}
	}
}

// memFragment is an in-process fragment binding; kioskd has no URL bar.
type memFragment struct {
	fragment string
}

func (m *memFragment) Fragment() string            { return m.fragment }
func (m *memFragment) SetFragment(fragment string) { m.fragment = fragment }

func startStubService(listen string, logger *zap.Logger) (string, func(), error) {
	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return "", nil, err
	}

	mux := chi.NewRouter()
	mux.Use(middleware.Recoverer)
	mux.Post("/api/commands/{command}", func(w http.ResponseWriter, r *http.Request) {
		logger.Info("command accepted", zap.String("command", chi.URLParam(r, "command")))
		w.WriteHeader(http.StatusNoContent)
	})
	mux.Post("/api/events/login", func(w http.ResponseWriter, r *http.Request) {
		logger.Info("login notice accepted")
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Error("stub service stopped", zap.Error(err))
		}
	}()

	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
	return "http://" + ln.Addr().String(), shutdown, nil
}
