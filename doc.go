// Package goKiosk implements the client-side session core of the ramptrack
// ground-support-equipment tracking application: the authentication state
// machine (hydration, login, refresh, logout), the durable session store it
// persists through, and the pre-flight validation gate that every
// state-mutating call to the actor service must pass.
//
// The package is designed for kiosk and terminal frontends: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// goKiosk is the public surface. It exposes [Engine], [Builder], [Config], and
// value types (Session, StateSnapshot, Event). Screen routing lives in
// route/, the persistence backends in store/, the credential roster in
// roster/, the reconnect overlay in overlay/, and the write-path client in
// actor/.
//
// # What this package must NOT do
//
//   - Render screens or own navigation; it only decides and reports.
//   - Enforce ownership/authorization; that is the actor service's job. The
//     gate blocks solely on the absence of a local session or on a confirmed
//     authentication failure.
//   - Treat backend unavailability as an authentication failure. Local trust
//     survives outages; only explicit unauthorized/forbidden/expired signals
//     clear it.
//
// # Availability contract
//
// Hydrate always reaches readiness, even when every internal step fails.
// Login transitions and persists the session before any network I/O; the
// follow-up notification is advisory and bounded. RefreshSession admits at
// most one in-flight rebuild and races it against a fixed timeout.
package goKiosk
