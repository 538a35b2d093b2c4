// Package cleanup is the orchestrator-glue layer that sits between a raw
// browser-extracted page and the validator/skill-extractor pipeline:
// HTML unescape, whitespace collapse, and skill list dedup, following the
// same cleaning-before-processing shape as the teacher's HTML cleaner.
package cleanup

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	whitespaceRegex = regexp.MustCompile(`[^\S\n]+`)
	newlineRegex    = regexp.MustCompile(`\n{3,}`)
	looksLikeHTML   = regexp.MustCompile(`<[a-zA-Z!/][^>]*>`)
)

// CleanDescription unescapes HTML entities, strips any markup that leaked
// through (some boards render the description field straight out of a
// dangerouslySetInnerHTML-style container rather than plain text — see
// Naukri's "dang-inner-html" selector), and collapses whitespace. Markup
// stripping follows the teacher's HTMLCleaner: parse with goquery and
// keep only the document text.
func CleanDescription(raw string) string {
	text := raw
	if looksLikeHTML.MatchString(text) {
		text = stripHTML(text)
	}
	text = html.UnescapeString(text)
	text = whitespaceRegex.ReplaceAllString(text, " ")
	text = newlineRegex.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// stripHTML reduces an HTML fragment to its rendered text, discarding
// tags, comments, and attributes. Falls back to the raw input if the
// fragment fails to parse (e.g. it was never really HTML).
func stripHTML(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	doc.Find("script, style").Remove()
	return doc.Text()
}

// DedupSkills preserves first-occurrence order and drops case-insensitive
// repeats (I4), returning the canonical comma-joined string the store
// persists.
func DedupSkills(skills []string) string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		trimmed := strings.TrimSpace(s)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	return strings.Join(out, ", ")
}
