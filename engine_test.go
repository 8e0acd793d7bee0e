package goKiosk

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ramptrack/goKiosk/roster"
	"github.com/ramptrack/goKiosk/store"
)

func testRoster(t *testing.T) *roster.Roster {
	t.Helper()
	return roster.New([]roster.Entry{
		{
			BadgeID:     "B100",
			Email:       "kim@ramptrack.example",
			Password:    "pw-kim-1",
			Role:        "agent",
			DisplayName: "Kim V.",
		},
		{
			BadgeID:     "B200",
			Role:        "manager",
			DisplayName: "Ola N.",
		},
	})
}

func newTestEngine(t *testing.T, kv store.KV) *Engine {
	t.Helper()
	if kv == nil {
		kv = store.NewMemKV()
	}
	engine, err := New().
		WithRoster(testRoster(t)).
		WithStore(kv).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func TestHydrateEmptyStore(t *testing.T) {
	engine := newTestEngine(t, nil)

	if engine.Ready() {
		t.Fatal("engine ready before Hydrate")
	}
	if engine.Hydrate() {
		t.Fatal("Hydrate found a session in an empty store")
	}
	if !engine.Ready() {
		t.Fatal("engine not ready after Hydrate")
	}
	if _, ok := engine.Session(); ok {
		t.Fatal("session present after empty hydration")
	}
}

func TestHydrateSurvivesUndefinedGarbage(t *testing.T) {
	kv := store.NewMemKV()
	if err := kv.Set(store.CanonicalKey, "undefined"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	engine := newTestEngine(t, kv)

	if engine.Hydrate() {
		t.Fatal("Hydrate built a session from the undefined sentinel")
	}
	if !engine.Ready() {
		t.Fatal("readiness must be reached even on garbage")
	}
}

func TestHydrateRecoversPersistedSession(t *testing.T) {
	kv := store.NewMemKV()
	seed := newTestEngine(t, kv)
	if err := seed.Login(context.Background(), "kim@ramptrack.example", "pw-kim-1"); err != nil {
		t.Fatalf("seed login failed: %v", err)
	}

	engine := newTestEngine(t, kv)
	if !engine.Hydrate() {
		t.Fatal("Hydrate did not recover the persisted session")
	}
	sess, ok := engine.Session()
	if !ok {
		t.Fatal("no session after hydration")
	}
	if sess.Subject != "kim@ramptrack.example" || sess.Role != RoleAgent {
		t.Fatalf("unexpected session: %+v", sess)
	}
}

func TestHydrateRunsOnce(t *testing.T) {
	kv := store.NewMemKV()
	engine := newTestEngine(t, kv)
	if engine.Hydrate() {
		t.Fatal("unexpected session")
	}

	// A record appearing after hydration must not change the outcome of a
	// second Hydrate call; hydration runs once per process.
	other := newTestEngine(t, kv)
	if err := other.Login(context.Background(), "kim@ramptrack.example", "pw-kim-1"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if engine.Hydrate() {
		t.Fatal("second Hydrate re-ran the startup read")
	}
}

func TestLoginTransitionsAndPersists(t *testing.T) {
	kv := store.NewMemKV()
	engine := newTestEngine(t, kv)
	engine.Hydrate()

	if err := engine.Login(context.Background(), "  KIM@ramptrack.example ", "pw-kim-1"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	sess, ok := engine.Session()
	if !ok {
		t.Fatal("no session after login")
	}
	if sess.DisplayIdentity() != "Kim V." {
		t.Fatalf("display identity = %q", sess.DisplayIdentity())
	}

	raw, err := kv.Get(store.CanonicalKey)
	if err != nil || raw == "" {
		t.Fatalf("session not persisted under canonical key: %v", err)
	}
}

func TestLoginFailureNonDestructive(t *testing.T) {
	engine := newTestEngine(t, nil)
	engine.Hydrate()

	if err := engine.Login(context.Background(), "kim@ramptrack.example", "pw-kim-1"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	before, _ := engine.Session()

	err := engine.Login(context.Background(), "kim@ramptrack.example", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}

	after, ok := engine.Session()
	if !ok || after != before {
		t.Fatalf("failed login disturbed the active session: %+v -> %+v", before, after)
	}
	if engine.LoginError() == "" {
		t.Fatal("no user-facing error recorded")
	}

	engine.ClearLoginError()
	if engine.LoginError() != "" {
		t.Fatal("ClearLoginError left the message in place")
	}
	if _, ok := engine.Session(); !ok {
		t.Fatal("ClearLoginError touched the session")
	}
}

func TestBadgeLogin(t *testing.T) {
	engine := newTestEngine(t, nil)
	engine.Hydrate()

	if err := engine.LoginWithBadge(context.Background(), " b200 "); err != nil {
		t.Fatalf("badge login failed: %v", err)
	}
	sess, _ := engine.Session()
	if sess.Role != RoleManager || sess.Subject != "B200" {
		t.Fatalf("unexpected session: %+v", sess)
	}

	if err := engine.LoginWithBadge(context.Background(), "B999"); !errors.Is(err, ErrBadgeUnknown) {
		t.Fatalf("err = %v, want ErrBadgeUnknown", err)
	}
	if _, ok := engine.Session(); !ok {
		t.Fatal("unknown badge cleared the active session")
	}
}

func TestLogoutIdempotent(t *testing.T) {
	kv := store.NewMemKV()
	engine := newTestEngine(t, kv)
	engine.Hydrate()
	if err := engine.LoginWithBadge(context.Background(), "B100"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	engine.Logout(context.Background())
	if _, ok := engine.Session(); ok {
		t.Fatal("session survived logout")
	}
	if _, err := kv.Get(store.CanonicalKey); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("store not cleared: %v", err)
	}

	// Second logout is a no-op, not an error.
	engine.Logout(context.Background())
}

func TestAdvisoryLoginNotificationFailureDoesNotRevert(t *testing.T) {
	notified := make(chan struct{})
	engine, err := New().
		WithRoster(testRoster(t)).
		WithStore(store.NewMemKV()).
		WithLoginNotifier(loginNotifierFunc(func(ctx context.Context, s Session) error {
			close(notified)
			return errors.New("telemetry endpoint down")
		})).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	engine.Hydrate()

	if err := engine.LoginWithBadge(context.Background(), "B100"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	select {
	case <-notified:
	case <-time.After(2 * time.Second):
		t.Fatal("advisory notification never fired")
	}

	if _, ok := engine.Session(); !ok {
		t.Fatal("failed advisory notification reverted the session")
	}
}

func TestWatchDeliversTransitions(t *testing.T) {
	engine := newTestEngine(t, nil)
	ch, cancel := engine.Watch()
	defer cancel()

	first := <-ch
	if first.Ready || first.HasSession {
		t.Fatalf("initial snapshot = %+v", first)
	}

	engine.Hydrate()

	var sawReady bool
	deadline := time.After(2 * time.Second)
	for !sawReady {
		select {
		case snap := <-ch:
			if snap.Ready {
				sawReady = true
			}
		case <-deadline:
			t.Fatal("no ready snapshot delivered")
		}
	}
}

type loginNotifierFunc func(ctx context.Context, session Session) error

func (f loginNotifierFunc) NotifyLogin(ctx context.Context, session Session) error {
	return f(ctx, session)
}

func TestBuilderValidation(t *testing.T) {
	if _, err := New().WithStore(store.NewMemKV()).Build(); !errors.Is(err, ErrRosterRequired) {
		t.Fatalf("err = %v, want ErrRosterRequired", err)
	}
	if _, err := New().WithRoster(testRoster(t)).Build(); !errors.Is(err, ErrStoreRequired) {
		t.Fatalf("err = %v, want ErrStoreRequired", err)
	}

	b := New().WithRoster(testRoster(t)).WithStore(store.NewMemKV())
	if _, err := b.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if _, err := b.Build(); !errors.Is(err, ErrAlreadyBuilt) {
		t.Fatalf("err = %v, want ErrAlreadyBuilt", err)
	}

	bad := defaultConfig()
	bad.Refresh.Timeout = 0
	if _, err := New().WithConfig(bad).WithRoster(testRoster(t)).WithStore(store.NewMemKV()).Build(); err == nil {
		t.Fatal("zero refresh timeout accepted")
	}
}
