package goKiosk

import "strings"

// Role is the closed set of roles a signed-in identity can hold.
//
// Role values are assigned at session construction and never change for the
// lifetime of a Session; a role change requires a fresh login.
type Role uint8

const (
	// RoleGuest is the zero value and the parse fallback for unknown roles.
	RoleGuest Role = iota
	// RoleOperator is an equipment operator.
	RoleOperator
	// RoleAgent is a ramp agent.
	RoleAgent
	// RoleManager is a shift manager.
	RoleManager
	// RoleAdmin is a dashboard administrator.
	RoleAdmin
)

var roleNames = map[Role]string{
	RoleGuest:    "guest",
	RoleOperator: "operator",
	RoleAgent:    "agent",
	RoleManager:  "manager",
	RoleAdmin:    "admin",
}

// String returns the canonical lowercase name of the role.
func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "guest"
}

// ParseRole maps a stored role name onto the closed role set. Unknown or
// empty names parse to [RoleGuest] so that a stale persisted record still
// hydrates to a minimally privileged session.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin
	case "manager":
		return RoleManager
	case "agent":
		return RoleAgent
	case "operator":
		return RoleOperator
	default:
		return RoleGuest
	}
}

// fallbackDisplayName is shown when a session carries no display name, no
// badge, and no subject.
const fallbackDisplayName = "Ramp User"

// Session is the client's locally trusted representation of the signed-in
// identity.
//
// Session instances are constructed by the engine and then treated as
// immutable; state transitions replace the whole value, never mutate fields
// in place.
type Session struct {
	// Subject is the canonical login name (email or badge).
	Subject string
	// Role is drawn from the closed role set.
	Role Role
	// BadgeID is the physical badge identifier, empty when the identity was
	// established without a badge.
	BadgeID string
	// DisplayName is the identity shown in UI chrome. NewSession guarantees
	// it is non-empty.
	DisplayName string
}

// NewSession constructs an immutable Session, applying the display-identity
// fallback chain so DisplayName is never empty.
func NewSession(subject string, role Role, badgeID, displayName string) Session {
	s := Session{
		Subject: subject,
		Role:    role,
		BadgeID: badgeID,
	}
	s.DisplayName = s.displayFallback(displayName)
	return s
}

// DisplayIdentity returns the identity to show in UI: DisplayName, falling
// back to BadgeID, then Subject, then a fixed literal. It never returns the
// empty string, even on a zero-value Session.
func (s Session) DisplayIdentity() string {
	return s.displayFallback(s.DisplayName)
}

func (s Session) displayFallback(name string) string {
	if name != "" {
		return name
	}
	if s.BadgeID != "" {
		return s.BadgeID
	}
	if s.Subject != "" {
		return s.Subject
	}
	return fallbackDisplayName
}

// Matches reports whether id identifies this session, comparing against both
// the subject and the badge. Both sides are trimmed and case-folded the same
// way roster lookups are, so a hint like " b100 " still matches badge B100.
// Used by the gate's ownership hint check.
func (s Session) Matches(id string) bool {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return false
	}
	if id == strings.ToLower(strings.TrimSpace(s.Subject)) {
		return true
	}
	return s.BadgeID != "" && id == strings.ToLower(strings.TrimSpace(s.BadgeID))
}

// StateSnapshot is a point-in-time copy of the engine's observable state,
// delivered to [Engine.Watch] subscribers after every transition.
//
// Ready and HasSession are orthogonal: Ready reports that hydration has
// completed, HasSession that a session is currently trusted.
type StateSnapshot struct {
	Ready      bool
	HasSession bool
	Session    Session
	LoginError string
	Refreshing bool
}
