// Package skills implements the three-layer, ordered, region-consuming
// skill extractor described in spec §4.8: a curated multi-word phrase
// layer, a context-template layer, and a direct-vocabulary layer, each
// skipping any match that overlaps a span already attributed by an
// earlier layer.
package skills

import "strings"

// span is a half-open byte range [start, end) already attributed to a
// skill by an earlier layer.
type span struct{ start, end int }

func overlaps(consumed []span, start, end int) bool {
	for _, c := range consumed {
		if start < c.end && end > c.start {
			return true
		}
	}
	return false
}

// Extract runs all three layers over cleaned description text and returns
// canonical skill names in first-occurrence order, deduplicated
// case-insensitively (I4). vocab may be nil, in which case only Layers 1
// and 2 run.
func Extract(text string, vocab *Vocabulary) []string {
	var consumed []span
	var ordered []string
	seen := make(map[string]struct{})

	emit := func(name string, start, end int) {
		consumed = append(consumed, span{start, end})
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		ordered = append(ordered, name)
	}

	extractLayer1(text, &consumed, emit)
	extractLayer2(text, &consumed, emit)
	if vocab != nil {
		extractLayer3(text, vocab, &consumed, emit)
	}

	return ordered
}

type emitFunc func(name string, start, end int)

// extractLayer1 handles curated multi-word phrases, longest-first greedy
// matching, each match's span immediately added to consumed.
func extractLayer1(text string, consumed *[]span, emit emitFunc) {
	for _, p := range curatedPhrases {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			start, end := loc[0], loc[1]
			if overlaps(*consumed, start, end) {
				continue
			}
			*consumed = append(*consumed, span{start, end})
			emit(p.canonical, start, end)
		}
	}
}

// extractLayer2 applies the context regex templates; captured candidates
// are resolved through the synonym table and discarded if unrecognised
// (Layer 2 never introduces new vocabulary).
func extractLayer2(text string, consumed *[]span, emit emitFunc) {
	for _, tmpl := range contextTemplates {
		for _, loc := range tmpl.re.FindAllStringSubmatchIndex(text, -1) {
			if len(loc) < 4 {
				continue
			}
			capStart, capEnd := loc[2], loc[3]
			if capStart < 0 || capEnd < 0 {
				continue
			}
			if overlaps(*consumed, capStart, capEnd) {
				continue
			}
			candidate := text[capStart:capEnd]
			canonical, ok := canonicalize(candidate)
			if !ok {
				continue
			}
			*consumed = append(*consumed, span{capStart, capEnd})
			emit(canonical, capStart, capEnd)
		}
	}
}

// extractLayer3 matches the reference vocabulary directly, applying the
// explicit corroboration checks in place of the variable-length
// lookaround the spec's reference engine uses (§9 regex engine note).
func extractLayer3(text string, vocab *Vocabulary, consumed *[]span, emit emitFunc) {
	for _, entry := range vocab.entries {
		for _, re := range entry.regexes {
			for _, loc := range re.FindAllStringIndex(text, -1) {
				start, end := loc[0], loc[1]
				if overlaps(*consumed, start, end) {
					continue
				}
				if entry.ambiguous != nil && !entry.ambiguous(text, start, end) {
					continue
				}
				*consumed = append(*consumed, span{start, end})
				emit(entry.name, start, end)
			}
		}
	}
}
