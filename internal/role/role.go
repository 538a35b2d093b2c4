// Package role implements the actual-role normalisation the harvester
// applies to raw job-card titles (§4.8, "Actual-role normalisation"): a
// pattern vocabulary (46 entries in the shipped assets/roles.json) maps noisy titles like "Sr. Data Analyst,
// Remote" onto one of a fixed set of canonical role tags. Unmatched
// titles fall through with the raw input retained.
package role

import (
	"encoding/json"
	"os"
	"regexp"

	"github.com/rotisserie/eris"
)

// Entry is one canonical-role pattern-group, same JSON shape as the skill
// vocabulary so both can be authored and validated the same way.
type Entry struct {
	Name     string   `json:"name"`
	Patterns []string `json:"patterns"`
}

type compiledEntry struct {
	name string
	res  []*regexp.Regexp
}

// Normalizer resolves raw job-card titles to canonical role tags.
type Normalizer struct {
	entries []compiledEntry
}

// Load reads and compiles the role vocabulary from path, failing fast on
// a malformed contract (§7 "vocabulary file missing/malformed").
func Load(path string) (*Normalizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "role: read vocabulary file")
	}

	var raw []Entry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrap(err, "role: parse vocabulary json")
	}

	seen := make(map[string]struct{}, len(raw))
	entries := make([]compiledEntry, 0, len(raw))
	for _, e := range raw {
		if e.Name == "" {
			return nil, eris.New("role: vocabulary entry with empty name")
		}
		if _, dup := seen[e.Name]; dup {
			return nil, eris.Errorf("role: duplicate vocabulary entry name %q", e.Name)
		}
		seen[e.Name] = struct{}{}
		if len(e.Patterns) == 0 {
			return nil, eris.Errorf("role: vocabulary entry %q has no patterns", e.Name)
		}

		ce := compiledEntry{name: e.Name}
		for _, p := range e.Patterns {
			re, err := regexp.Compile(`(?i)` + p)
			if err != nil {
				return nil, eris.Wrapf(err, "role: pattern %q for entry %q fails to compile", p, e.Name)
			}
			ce.res = append(ce.res, re)
		}
		entries = append(entries, ce)
	}

	return &Normalizer{entries: entries}, nil
}

// Normalize maps a raw job-card title to its canonical role tag. When no
// pattern matches, the raw title is returned unchanged so downstream
// storage never loses the original signal.
func (n *Normalizer) Normalize(rawTitle string) string {
	for _, e := range n.entries {
		for _, re := range e.res {
			if re.MatchString(rawTitle) {
				return e.name
			}
		}
	}
	return rawTitle
}
