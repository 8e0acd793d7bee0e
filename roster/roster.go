// Package roster holds the static credential table mapping badges and login
// identifiers to roles and display identities.
//
// The roster is reference data: it is loaded once at startup and never
// mutated at runtime. Lookups normalize input (trim, case-fold) and compare
// exactly against the normalized table; "not found" is a nil result, never
// an error.
package roster

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Entry is one roster row. Password is either a bcrypt hash ($2a$/$2b$
// prefix) or, for bench fixtures, a plaintext value compared exactly; an
// empty Password means the entry cannot log in with credentials at all,
// only by badge.
type Entry struct {
	BadgeID     string `yaml:"badge"`
	Email       string `yaml:"email,omitempty"`
	Password    string `yaml:"password,omitempty"`
	Role        string `yaml:"role"`
	DisplayName string `yaml:"name"`
}

// Roster is the immutable lookup table. All methods are safe for concurrent
// use.
type Roster struct {
	byBadge      map[string]Entry
	byIdentifier map[string]Entry
}

// New builds a roster from entries. Badge and email keys are normalized;
// a later entry with the same normalized key replaces an earlier one.
func New(entries []Entry) *Roster {
	r := &Roster{
		byBadge:      make(map[string]Entry, len(entries)),
		byIdentifier: make(map[string]Entry, len(entries)),
	}
	for _, e := range entries {
		if badge := normalize(e.BadgeID); badge != "" {
			r.byBadge[badge] = e
			r.byIdentifier[badge] = e
		}
		if email := normalize(e.Email); email != "" {
			r.byIdentifier[email] = e
		}
	}
	return r
}

// LookupByBadge returns the entry for a badge id, or nil when the badge is
// not on the roster.
func (r *Roster) LookupByBadge(id string) *Entry {
	if e, ok := r.byBadge[normalize(id)]; ok {
		return &e
	}
	return nil
}

// LookupByIdentifier returns the entry for an email or badge id, or nil.
func (r *Roster) LookupByIdentifier(emailOrBadge string) *Entry {
	if e, ok := r.byIdentifier[normalize(emailOrBadge)]; ok {
		return &e
	}
	return nil
}

// ValidateCredentials returns the entry only when a password is configured
// for it and the supplied password matches. Entries without a configured
// password never validate.
func (r *Roster) ValidateCredentials(identifier, password string) *Entry {
	e := r.LookupByIdentifier(identifier)
	if e == nil || e.Password == "" {
		return nil
	}
	if strings.HasPrefix(e.Password, "$2") {
		if bcrypt.CompareHashAndPassword([]byte(e.Password), []byte(password)) != nil {
			return nil
		}
		return e
	}
	if e.Password != password {
		return nil
	}
	return e
}

// ValidateBadge returns the entry for a badge id. Badge possession is the
// credential; there is no password check on this path.
func (r *Roster) ValidateBadge(id string) *Entry {
	return r.LookupByBadge(id)
}

// Len reports the number of distinct badge entries.
func (r *Roster) Len() int {
	return len(r.byBadge)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func validateEntry(i int, e Entry) error {
	if normalize(e.BadgeID) == "" && normalize(e.Email) == "" {
		return fmt.Errorf("roster entry %d: needs a badge or an email", i)
	}
	if strings.TrimSpace(e.Role) == "" {
		return fmt.Errorf("roster entry %d: role required", i)
	}
	return nil
}
