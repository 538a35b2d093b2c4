package skills

import (
	"regexp"
	"sort"
)

// phraseEntry is one curated multi-word technical phrase recognised by
// Layer 1 (§4.8). Canonical is the display name written beside each
// phrase in curatedPhrases; the synonym table is not consulted.
type phraseEntry struct {
	phrase    string
	canonical string
	re        *regexp.Regexp
}

// curatedPhrases lists Layer 1's priority multi-word phrases, longest
// first within ties broken by declaration order; compilePhrases re-sorts
// by byte length descending so the greedy longest-match-first rule in the
// spec is enforced regardless of list order.
var curatedPhrases = compilePhrases([]struct{ phrase, canonical string }{
	{"natural language processing", "Natural Language Processing"},
	{"machine learning operations", "MLOps"},
	{"model lifecycle management", "MLOps"},
	{"continuous integration and continuous delivery", "CI/CD"},
	{"continuous integration", "CI/CD"},
	{"ci/cd", "CI/CD"},
	{"deep neural networks", "Deep Learning"},
	{"machine learning", "Machine Learning"},
	{"deep learning", "Deep Learning"},
	{"data engineering", "Data Engineering"},
	{"data science", "Data Science"},
	{"computer vision", "Computer Vision"},
	{"reinforcement learning", "Reinforcement Learning"},
	{"large language models", "Large Language Models"},
	{"vector databases", "Vector Databases"},
	{"feature engineering", "Feature Engineering"},
})

func compilePhrases(raw []struct{ phrase, canonical string }) []phraseEntry {
	out := make([]phraseEntry, 0, len(raw))
	for _, r := range raw {
		out = append(out, phraseEntry{
			phrase:    r.phrase,
			canonical: r.canonical,
			re:        regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(r.phrase) + `\b`),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].phrase) > len(out[j].phrase)
	})
	return out
}
