package store

import (
	"encoding/json"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// decodeRecord parses a persisted value into a Record, trying each known
// shape in fixed priority order: the canonical JSON object, the flat legacy
// JSON object, then the legacy compact-token blob. A shape either yields a
// complete record or is skipped; partial matches are never guessed at.
func decodeRecord(raw string) (Record, bool) {
	if rec, ok := decodeCanonical(raw); ok {
		return rec, true
	}
	if rec, ok := decodeLegacyFlat(raw); ok {
		return rec, true
	}
	if rec, ok := decodeLegacyToken(raw); ok {
		return rec, true
	}
	return Record{}, false
}

func encodeRecord(rec Record) (string, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeCanonical(raw string) (Record, bool) {
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return Record{}, false
	}
	if rec.Subject == "" || rec.Role == "" {
		return Record{}, false
	}
	return rec, true
}

// legacyFlatRecord is the field layout written by the first production
// frontend: email/name naming, no explicit subject.
type legacyFlatRecord struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	Name  string `json:"name"`
	Badge string `json:"badge"`
}

func decodeLegacyFlat(raw string) (Record, bool) {
	var rec legacyFlatRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return Record{}, false
	}
	subject := rec.Email
	if subject == "" {
		subject = rec.Badge
	}
	if subject == "" || rec.Role == "" {
		return Record{}, false
	}
	return Record{
		Subject:     subject,
		Role:        rec.Role,
		DisplayName: rec.Name,
		BadgeID:     rec.Badge,
	}, true
}

// decodeLegacyToken reads the pre-JSON persisted shape: an HS256 compact
// token whose claims carried the identity. The record lives in local trusted
// storage, so only the claim payload is read; the signature is not verified
// (the signing key never shipped to terminals).
func decodeLegacyToken(raw string) (Record, bool) {
	if strings.Count(raw, ".") != 2 {
		return Record{}, false
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return Record{}, false
	}
	subject, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if subject == "" || role == "" {
		return Record{}, false
	}
	name, _ := claims["name"].(string)
	badge, _ := claims["badge"].(string)
	return Record{
		Subject:     subject,
		Role:        role,
		DisplayName: name,
		BadgeID:     badge,
	}, true
}
