package skills

import (
	"strings"
)

// corroborator decides, given the full text and a candidate match's byte
// offsets, whether the match should be kept. This exists because Go's
// regexp engine (RE2) has no variable-length lookaround: the spec's
// negative-lookaround requirements (§4.8 Layer 3, §9 "regex engine") are
// implemented here as an explicit post-match context check instead of
// being silently dropped.
type corroborator func(text string, start, end int) bool

const contextWindow = 24

func windowAround(text string, start, end int) string {
	lo := start - contextWindow
	if lo < 0 {
		lo = 0
	}
	hi := end + contextWindow
	if hi > len(text) {
		hi = len(text)
	}
	return text[lo:hi]
}

// singleLetterCorroborator keeps a bare single-letter-language match (C, R)
// only when the surrounding window carries typographic or contextual
// corroboration, avoiding false positives like "researcher" or a stray
// capital letter in prose.
func singleLetterCorroborator(indicators ...string) corroborator {
	return func(text string, start, end int) bool {
		win := strings.ToLower(windowAround(text, start, end))
		// "C++" and similar are typographic corroboration right at the match.
		if end < len(text) && (text[end] == '+' || text[end] == '#') {
			return true
		}
		for _, ind := range indicators {
			if strings.Contains(win, ind) {
				return true
			}
		}
		return false
	}
}

// subwordHostCorroborator rejects a match when it is actually a substring
// of one of the known longer "host" words that happen to contain the
// short token (e.g. "scala" inside "scalable"). \b already blocks most of
// these since the host continues with a word character, but this guards
// the remaining case where the token is immediately adjacent to a host
// word across punctuation/whitespace, and documents the exclusion
// explicitly rather than relying on boundary semantics alone.
func subwordHostCorroborator(hosts ...string) corroborator {
	lowerHosts := make([]string, len(hosts))
	for i, h := range hosts {
		lowerHosts[i] = strings.ToLower(h)
	}
	return func(text string, start, end int) bool {
		win := strings.ToLower(windowAround(text, start, end))
		matched := strings.ToLower(text[start:end])
		for _, host := range lowerHosts {
			if host != matched && strings.Contains(win, host) {
				// A known host word is nearby; still accept unless the
				// match itself is literally embedded in it.
				if idx := strings.Index(win, host); idx >= 0 {
					hostStart := idx
					hostEnd := idx + len(host)
					matchRel := strings.Index(win, matched)
					if matchRel >= hostStart && matchRel+len(matched) <= hostEnd && host != matched {
						return false
					}
				}
			}
		}
		return true
	}
}

// ambiguousCorroborators names the vocabulary entries the spec singles out
// as needing negative-lookaround-equivalent handling (§4.8 Layer 3).
var ambiguousCorroborators = map[string]corroborator{
	"C":     singleLetterCorroborator("programming", "language", "developer", "compiler", "embedded"),
	"R":     singleLetterCorroborator("programming", "language", "statistic", "data science", "tidyverse"),
	"Go":    singleLetterCorroborator("programming", "language", "golang", "developer", "goroutine", "concurrency"),
	"Scala": subwordHostCorroborator("scalable", "scalability"),
	"Gin":   subwordHostCorroborator("engineer", "engineering", "original"),
	"RAG":   subwordHostCorroborator("storage", "average", "garage"),
	"Ada":   subwordHostCorroborator("adapting", "adapter", "adaptive", "adapt"),
	"Lean":  subwordHostCorroborator("clean", "cleaner", "cleaning"),
}
