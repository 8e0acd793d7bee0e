package roster

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func testEntries(t *testing.T) []Entry {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-ola"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt failed: %v", err)
	}
	return []Entry{
		{
			BadgeID:     "B100",
			Email:       "Kim@Ramptrack.example",
			Password:    "pw-kim-1",
			Role:        "agent",
			DisplayName: "Kim V.",
		},
		{
			BadgeID:     "B200",
			Email:       "ola@ramptrack.example",
			Password:    string(hash),
			Role:        "manager",
			DisplayName: "Ola N.",
		},
		{
			BadgeID:     "B300",
			Role:        "operator",
			DisplayName: "Pat R.",
		},
	}
}

func TestLookupNormalization(t *testing.T) {
	r := New(testEntries(t))

	tests := []struct {
		in   string
		want string
	}{
		{"B100", "Kim V."},
		{"  b100  ", "Kim V."},
		{"kim@ramptrack.example", "Kim V."},
		{" KIM@RAMPTRACK.EXAMPLE ", "Kim V."},
	}
	for _, tt := range tests {
		e := r.LookupByIdentifier(tt.in)
		if e == nil {
			t.Fatalf("LookupByIdentifier(%q) = nil", tt.in)
		}
		if e.DisplayName != tt.want {
			t.Fatalf("LookupByIdentifier(%q).DisplayName = %q", tt.in, e.DisplayName)
		}
	}

	if r.LookupByBadge("kim@ramptrack.example") != nil {
		t.Fatal("badge lookup matched an email")
	}
	if r.LookupByBadge("B404") != nil {
		t.Fatal("unknown badge matched")
	}
}

func TestValidateCredentialsPlaintext(t *testing.T) {
	r := New(testEntries(t))

	if r.ValidateCredentials("kim@ramptrack.example", "pw-kim-1") == nil {
		t.Fatal("correct plaintext password rejected")
	}
	if r.ValidateCredentials("kim@ramptrack.example", "PW-KIM-1") != nil {
		t.Fatal("password comparison must be exact, not case-folded")
	}
	if r.ValidateCredentials("kim@ramptrack.example", "") != nil {
		t.Fatal("empty password accepted")
	}
}

func TestValidateCredentialsBcrypt(t *testing.T) {
	r := New(testEntries(t))

	if r.ValidateCredentials("ola@ramptrack.example", "s3cret-ola") == nil {
		t.Fatal("correct bcrypt password rejected")
	}
	if r.ValidateCredentials("ola@ramptrack.example", "wrong") != nil {
		t.Fatal("wrong bcrypt password accepted")
	}
}

func TestValidateCredentialsNoPasswordConfigured(t *testing.T) {
	r := New(testEntries(t))
	// B300 has no password: credentials can never validate it, badge can.
	if r.ValidateCredentials("B300", "") != nil {
		t.Fatal("entry without a password validated with an empty password")
	}
	if r.ValidateBadge("B300") == nil {
		t.Fatal("badge validation must not require a password")
	}
}

func TestValidateBadge(t *testing.T) {
	r := New(testEntries(t))
	if e := r.ValidateBadge(" b200 "); e == nil || e.Role != "manager" {
		t.Fatalf("ValidateBadge normalization broken: %+v", e)
	}
	if r.ValidateBadge("nope") != nil {
		t.Fatal("unknown badge validated")
	}
}

func TestParseYAML(t *testing.T) {
	doc := []byte(`
roster:
  - badge: "B100"
    email: "kim@ramptrack.example"
    password: "pw"
    role: agent
    name: "Kim V."
  - badge: "B200"
    role: manager
    name: "Ola N."
`)
	r, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if r.Len() != 2 {
		t.Fatalf("Len = %d, want 2", r.Len())
	}
	if r.LookupByBadge("B200") == nil {
		t.Fatal("parsed entry missing")
	}
}

func TestParseRejectsInvalidEntries(t *testing.T) {
	cases := map[string]string{
		"no identity":  "roster:\n  - role: agent\n    name: X\n",
		"no role":      "roster:\n  - badge: B1\n    name: X\n",
		"empty doc":    "roster: []\n",
		"not yaml":     "{{{{",
		"wrong schema": "fleet:\n  - badge: B1\n",
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Fatalf("%s: Parse accepted invalid document", name)
		}
	}
}
