// Package store persists the single serialized session record the kiosk
// trusts across reloads.
//
// A [SessionStore] wraps a minimal keyed backend ([KV]) and owns the record
// codec, the canonical/legacy key layout, and the repair policy for corrupt
// entries. Backends are dumb string stores; all session semantics live here.
package store

import (
	"errors"

	"go.uber.org/zap"
)

// CanonicalKey is the only key ever written. Earlier deployments used the
// legacy keys below; those are still read during migration and erased by
// PurgeAll, but never written.
const CanonicalKey = "ramptrack.session.v2"

var legacyKeys = []string{"ramptrack.session", "gseSession"}

// ErrNotFound is returned by KV backends for an absent key.
var ErrNotFound = errors.New("store: key not found")

// KV is the minimal keyed persistence surface a backend must provide.
// Get returns ErrNotFound for an absent key; Delete of an absent key is not
// an error.
type KV interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Record is the wire shape of the persisted session. It round-trips
// losslessly through Write followed by Read.
type Record struct {
	Subject     string `json:"subject"`
	Role        string `json:"role"`
	DisplayName string `json:"displayName,omitempty"`
	BadgeID     string `json:"badgeId,omitempty"`
}

// SessionStore is the durable persistence surface for exactly one session
// record. All methods are safe for concurrent use when the backend is.
//
// Failure posture: Read never returns an error to the caller; absent,
// sentinel-garbage, and malformed values all read as "no record", and a
// malformed value is erased so it cannot poison future reads. Write failures
// are logged and swallowed: they only cost persistence across reloads, not
// in-memory correctness for the current process.
type SessionStore struct {
	kv  KV
	log *zap.Logger
}

// New wraps a backend. A nil logger is replaced with zap.NewNop().
func New(kv KV, log *zap.Logger) *SessionStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionStore{kv: kv, log: log}
}

// Read returns the persisted record, trying the canonical key first and then
// each legacy key in fixed priority order. ok is false when no well-formed
// record exists anywhere.
func (s *SessionStore) Read() (Record, bool) {
	for _, key := range append([]string{CanonicalKey}, legacyKeys...) {
		raw, err := s.kv.Get(key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			s.log.Warn("session store read failed", zap.String("key", key), zap.Error(err))
			continue
		}
		if isAbsentSentinel(raw) {
			continue
		}
		rec, ok := decodeRecord(raw)
		if !ok {
			s.log.Warn("erasing corrupt session record", zap.String("key", key))
			if derr := s.kv.Delete(key); derr != nil {
				s.log.Warn("corrupt record erase failed", zap.String("key", key), zap.Error(derr))
			}
			continue
		}
		return rec, true
	}
	return Record{}, false
}

// Write persists the record under the canonical key. Failures are logged and
// swallowed.
func (s *SessionStore) Write(rec Record) {
	raw, err := encodeRecord(rec)
	if err != nil {
		s.log.Warn("session record encode failed", zap.Error(err))
		return
	}
	if err := s.kv.Set(CanonicalKey, raw); err != nil {
		s.log.Warn("session store write failed", zap.Error(err))
	}
}

// Clear erases the canonical key. Idempotent.
func (s *SessionStore) Clear() {
	if err := s.kv.Delete(CanonicalKey); err != nil {
		s.log.Warn("session store clear failed", zap.Error(err))
	}
}

// PurgeAll erases the canonical key and every legacy key. Invoked on
// confirmed authentication failures so no historical record can resurrect
// the identity.
func (s *SessionStore) PurgeAll() {
	s.Clear()
	for _, key := range legacyKeys {
		if err := s.kv.Delete(key); err != nil {
			s.log.Warn("legacy key purge failed", zap.String("key", key), zap.Error(err))
		}
	}
}

// isAbsentSentinel reports values that must be treated as "no record"
// without attempting to parse: the empty string and the literal
// stringified-undefined an earlier frontend wrote on logout.
func isAbsentSentinel(raw string) bool {
	return raw == "" || raw == "undefined" || raw == "null"
}
