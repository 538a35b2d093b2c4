// Package validator implements Gate 1 (spec §4.7): an ordered set of
// structural, placeholder, English-language, date-sanity, and URL-shape
// checks applied to a cleaned JobDetail before it is persisted.
package validator

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"jobpipe/pkg/models"
	"jobpipe/pkg/utils"
)

// Reason is the short symbolic code the first failing check produces.
type Reason string

const (
	ReasonNone              Reason = ""
	ReasonBadJobID          Reason = "bad_job_id"
	ReasonBadURL            Reason = "bad_url"
	ReasonDescriptionTooWeak Reason = "description_too_weak"
	ReasonPlaceholder       Reason = "placeholder_content"
	ReasonNonEnglish        Reason = "non_english"
	ReasonBadPostedDate     Reason = "bad_posted_date"
	ReasonBadSkills         Reason = "bad_skills"
)

// Result is the outcome of running Gate 1 against a candidate record.
type Result struct {
	OK     bool
	Reason Reason
	Detail string
}

func pass() Result { return Result{OK: true} }

func fail(reason Reason, detail string) Result {
	return Result{OK: false, Reason: reason, Detail: detail}
}

// Options configures the numeric thresholds §6 exposes as configuration.
type Options struct {
	MinDescriptionChars       int
	MinDescriptionWords       int
	EnglishIndicatorThreshold int
	MaxSkills                 int
}

// DefaultOptions mirrors the spec's documented defaults.
func DefaultOptions() Options {
	return Options{
		MinDescriptionChars:       100,
		MinDescriptionWords:       10,
		EnglishIndicatorThreshold: 3,
		MaxSkills:                 80,
	}
}

var jobIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var placeholderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\btbd\b`),
	regexp.MustCompile(`(?i)\bto be determined\b`),
	regexp.MustCompile(`(?i)\bcoming soon\b`),
	regexp.MustCompile(`(?i)\blorem ipsum\b`),
	regexp.MustCompile(`(?i)\btest (company|job|posting)\b`),
	regexp.MustCompile(`(?i)\bplaceholder\b`),
	regexp.MustCompile(`(?m)^[.\-]+$`),
}

// englishIndicators is a fixed vocabulary of ~25 common job-posting words
// used as a cheap English-language heuristic (§4.7 check 5).
var englishIndicators = []string{
	"the", "and", "experience", "required", "team", "work", "skills",
	"responsibilities", "role", "company", "candidate", "ability",
	"with", "years", "including", "preferred", "strong", "knowledge",
	"our", "you", "will", "job", "position", "qualifications", "must",
}

var wordSplitter = regexp.MustCompile(`\s+`)

// Validate runs Gate 1 against a cleaned detail record and options. The
// caller (orchestrator glue) is responsible for HTML unescape, whitespace
// collapse, and skill dedup before this is invoked.
func Validate(detail *models.JobDetail, opts Options) Result {
	if r := checkJobID(detail.JobID); !r.OK {
		return r
	}
	if r := checkURL(detail.Platform, detail.URL); !r.OK {
		return r
	}
	if r := checkDescription(detail.JobDescription, opts); !r.OK {
		return r
	}
	if r := checkPlaceholder(detail.JobDescription); !r.OK {
		return r
	}
	if r := checkEnglish(detail.JobDescription, opts); !r.OK {
		return r
	}
	if r := checkPostedDate(detail.PostedDate, detail.ScrapedAt); !r.OK {
		return r
	}
	if r := checkSkills(detail.Skills, opts); !r.OK {
		return r
	}
	return pass()
}

func checkJobID(jobID string) Result {
	if len(jobID) < 5 || !jobIDPattern.MatchString(jobID) {
		return fail(ReasonBadJobID, fmt.Sprintf("job_id %q fails shape check", jobID))
	}
	return pass()
}

func checkURL(platform utils.Platform, rawURL string) Result {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" {
		return fail(ReasonBadURL, "url does not parse")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fail(ReasonBadURL, fmt.Sprintf("unsupported scheme %q", u.Scheme))
	}
	expectedDomain, err := utils.ExpectedDomain(platform)
	if err != nil {
		return fail(ReasonBadURL, err.Error())
	}
	if !strings.Contains(u.Host, expectedDomain) {
		return fail(ReasonBadURL, fmt.Sprintf("host %q does not contain %q", u.Host, expectedDomain))
	}
	return pass()
}

func checkDescription(desc string, opts Options) Result {
	if len(desc) < opts.MinDescriptionChars {
		return fail(ReasonDescriptionTooWeak, "description shorter than minimum character count")
	}
	words := splitWords(desc)
	if len(words) < opts.MinDescriptionWords {
		return fail(ReasonDescriptionTooWeak, "description has too few words")
	}
	avg := averageWordLength(words)
	if avg < 3 || avg > 20 {
		return fail(ReasonDescriptionTooWeak, fmt.Sprintf("average word length %.1f out of range", avg))
	}
	return pass()
}

func checkPlaceholder(desc string) Result {
	for _, p := range placeholderPatterns {
		if p.MatchString(desc) {
			return fail(ReasonPlaceholder, fmt.Sprintf("matched placeholder pattern %q", p.String()))
		}
	}
	return pass()
}

func checkEnglish(desc string, opts Options) Result {
	lower := strings.ToLower(desc)
	seen := make(map[string]struct{})
	for _, ind := range englishIndicators {
		if strings.Contains(lower, ind) {
			seen[ind] = struct{}{}
		}
	}
	if len(seen) < opts.EnglishIndicatorThreshold {
		return fail(ReasonNonEnglish, fmt.Sprintf("only %d distinct English indicators found", len(seen)))
	}
	return pass()
}

func checkPostedDate(postedDate *time.Time, scrapedAt time.Time) Result {
	if postedDate == nil {
		return pass()
	}
	if postedDate.After(scrapedAt) {
		return fail(ReasonBadPostedDate, "posted_date is in the future")
	}
	fiveYearsAgo := scrapedAt.AddDate(-5, 0, 0)
	if postedDate.Before(fiveYearsAgo) {
		return fail(ReasonBadPostedDate, "posted_date is older than 5 years")
	}
	return pass()
}

func checkSkills(skillsCSV string, opts Options) Result {
	if skillsCSV == "" {
		return pass()
	}
	parts := strings.Split(skillsCSV, ",")
	if len(parts) > opts.MaxSkills {
		return fail(ReasonBadSkills, fmt.Sprintf("%d skills exceeds max of %d", len(parts), opts.MaxSkills))
	}
	for _, p := range parts {
		if len(strings.TrimSpace(p)) < 2 {
			return fail(ReasonBadSkills, "skill entry shorter than 2 characters")
		}
	}
	return pass()
}

func splitWords(s string) []string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return wordSplitter.Split(trimmed, -1)
}

func averageWordLength(words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	total := 0
	for _, w := range words {
		total += len(w)
	}
	return float64(total) / float64(len(words))
}
