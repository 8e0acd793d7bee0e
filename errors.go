package goKiosk

import "errors"

var (
	// ErrInvalidCredentials is returned by Login when the identifier/password
	// pair does not match a roster entry.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrBadgeUnknown is returned by LoginWithBadge when the scanned badge is
	// not on the roster.
	ErrBadgeUnknown = errors.New("badge not recognized")
	// ErrUnauthorized signals a genuine authentication failure from the
	// backend. It is the only error class that clears local session state.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden signals a genuine authorization failure from the backend.
	ErrForbidden = errors.New("forbidden")
	// ErrDelegationExpired signals that the server-side delegation backing
	// the local session has expired.
	ErrDelegationExpired = errors.New("delegation expired")
	// ErrBackendUnavailable signals that the actor service could not be
	// reached. It is explicitly not an authentication failure and never
	// clears a valid local session.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrSessionRequired is returned by write-path operations when the gate
	// blocks because no local session exists.
	ErrSessionRequired = errors.New("session required")
	// ErrEngineNotReady is returned when an operation needs a hydrated
	// engine and Hydrate has not completed.
	ErrEngineNotReady = errors.New("engine not hydrated")
	// ErrRosterRequired is returned by Build when no roster was supplied.
	ErrRosterRequired = errors.New("builder: roster required")
	// ErrStoreRequired is returned by Build when neither a store backend nor
	// a Redis client was supplied.
	ErrStoreRequired = errors.New("builder: session store required")
	// ErrAlreadyBuilt is returned when Build is called twice on one builder.
	ErrAlreadyBuilt = errors.New("builder: already built")
)
