package roster

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type rosterFile struct {
	Entries []Entry `yaml:"roster"`
}

// Parse decodes a YAML roster document of the form:
//
//	roster:
//	  - badge: "B100"
//	    email: "kim@ramptrack.example"
//	    role: agent
//	    name: "Kim V."
func Parse(data []byte) (*Roster, error) {
	var doc rosterFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("roster: parse: %w", err)
	}
	if len(doc.Entries) == 0 {
		return nil, fmt.Errorf("roster: no entries")
	}
	for i, e := range doc.Entries {
		if err := validateEntry(i, e); err != nil {
			return nil, fmt.Errorf("roster: %w", err)
		}
	}
	return New(doc.Entries), nil
}

// LoadFile reads and parses a YAML roster file.
func LoadFile(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("roster: read %s: %w", path, err)
	}
	return Parse(data)
}
