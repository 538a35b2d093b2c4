package skills

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"github.com/rotisserie/eris"
)

// VocabEntry is one entry of the reference skill vocabulary (§4.8 Layer 3,
// §9 "vocabulary file as contract"). The file is data, not code: it is
// validated at load time, not trusted blindly.
type VocabEntry struct {
	Name     string   `json:"name"`
	Patterns []string `json:"patterns"`
}

// compiledEntry is a VocabEntry with its patterns pre-compiled once per
// process (§4.8 performance target).
type compiledEntry struct {
	name      string
	regexes   []*regexp.Regexp
	ambiguous corroborator // non-nil for entries needing extra context corroboration
}

// Vocabulary is the loaded, compiled, ready-to-match skill reference.
type Vocabulary struct {
	entries []compiledEntry
}

// LoadVocabulary reads and validates the skills JSON contract: every name
// must be unique and every pattern list non-empty and compiling. A
// malformed vocabulary is a fail-fast startup error (§7).
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "skills: read vocabulary file")
	}

	var raw []VocabEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrap(err, "skills: parse vocabulary json")
	}

	seen := make(map[string]struct{}, len(raw))
	entries := make([]compiledEntry, 0, len(raw))
	for _, e := range raw {
		if e.Name == "" {
			return nil, eris.New("skills: vocabulary entry with empty name")
		}
		if _, dup := seen[e.Name]; dup {
			return nil, eris.Errorf("skills: duplicate vocabulary entry name %q", e.Name)
		}
		seen[e.Name] = struct{}{}

		if len(e.Patterns) == 0 {
			return nil, eris.Errorf("skills: vocabulary entry %q has no patterns", e.Name)
		}

		ce := compiledEntry{name: e.Name, ambiguous: ambiguousCorroborators[e.Name]}
		for _, p := range e.Patterns {
			re, err := regexp.Compile(`(?i)\b` + p + `\b`)
			if err != nil {
				return nil, eris.Wrapf(err, "skills: pattern %q for entry %q fails to compile", p, e.Name)
			}
			ce.regexes = append(ce.regexes, re)
		}
		entries = append(entries, ce)
	}

	return &Vocabulary{entries: entries}, nil
}

// Validate re-checks the contract (exported so callers and tests can
// assert on a vocabulary that was constructed in-memory rather than
// loaded from disk).
func Validate(entries []VocabEntry) error {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.Name == "" {
			return fmt.Errorf("skills: vocabulary entry with empty name")
		}
		if _, dup := seen[e.Name]; dup {
			return fmt.Errorf("skills: duplicate vocabulary entry name %q", e.Name)
		}
		seen[e.Name] = struct{}{}
		if len(e.Patterns) == 0 {
			return fmt.Errorf("skills: vocabulary entry %q has no patterns", e.Name)
		}
		for _, p := range e.Patterns {
			if _, err := regexp.Compile(p); err != nil {
				return fmt.Errorf("skills: pattern %q for entry %q fails to compile: %w", p, e.Name, err)
			}
		}
	}
	return nil
}
