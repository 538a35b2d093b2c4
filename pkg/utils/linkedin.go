package utils

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// linkedInKind classifies what a LinkedIn URL actually points at, so
// callers can decide whether it is worth fetching as a job detail page.
type linkedInKind int

const (
	linkedInKindUnknown linkedInKind = iota
	linkedInKindJobView        // /jobs/view/123
	linkedInKindJobCollection  // /jobs/collections/recommended/?currentJobId=123
	linkedInKindNonJob         // profile, company page, feed, ...
)

// linkedInJobViewPattern matches a direct job detail path: /jobs/view/123456.
var linkedInJobViewPattern = regexp.MustCompile(`^/jobs/view/(\d+)/?$`)

// linkedInNumericIDPattern validates the currentJobId query param on a
// collection URL is the bare numeric id LinkedIn always assigns.
var linkedInNumericIDPattern = regexp.MustCompile(`^\d+$`)

// IsLinkedInURL reports whether urlStr's host is linkedin.com.
func IsLinkedInURL(urlStr string) bool {
	if urlStr == "" {
		return false
	}
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	return host == "linkedin.com" || host == "www.linkedin.com"
}

// linkedInJobID classifies a LinkedIn URL's path/query and, when it
// resolves to a job posting, returns the stable numeric job id.
func linkedInJobID(urlStr string) (linkedInKind, string, error) {
	if !IsLinkedInURL(urlStr) {
		return linkedInKindUnknown, "", fmt.Errorf("not a LinkedIn URL: %s", urlStr)
	}
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return linkedInKindUnknown, "", fmt.Errorf("invalid URL: %w", err)
	}

	path := strings.ToLower(parsed.Path)

	if m := linkedInJobViewPattern.FindStringSubmatch(path); len(m) > 1 {
		return linkedInKindJobView, m[1], nil
	}

	if strings.HasPrefix(path, "/jobs/collections/") {
		if id := parsed.Query().Get("currentJobId"); id != "" && linkedInNumericIDPattern.MatchString(id) {
			return linkedInKindJobCollection, id, nil
		}
		return linkedInKindNonJob, "", nil
	}

	return linkedInKindNonJob, "", nil
}

// ConvertToPublicLinkedInJobURL normalises any job-bearing LinkedIn URL
// shape (direct view, recommendation collection) to the canonical public
// /jobs/view/<id> form the fetch layer should navigate to.
func ConvertToPublicLinkedInJobURL(urlStr string) (string, error) {
	kind, jobID, err := linkedInJobID(urlStr)
	if err != nil {
		return "", err
	}

	switch kind {
	case linkedInKindJobView, linkedInKindJobCollection:
		return fmt.Sprintf("https://www.linkedin.com/jobs/view/%s", jobID), nil
	case linkedInKindNonJob:
		return "", NewNotJobPostingError(fmt.Sprintf("LinkedIn URL is not a job posting: %s", urlStr))
	default:
		return "", fmt.Errorf("unknown LinkedIn URL type for: %s", urlStr)
	}
}

// IsLinkedInJobURL reports whether urlStr resolves to a job posting
// (direct view or recommendation collection), not a profile/company page.
func IsLinkedInJobURL(urlStr string) bool {
	kind, _, err := linkedInJobID(urlStr)
	return err == nil && (kind == linkedInKindJobView || kind == linkedInKindJobCollection)
}

// ExtractLinkedInJobID extracts the stable numeric job id from a LinkedIn
// job URL, in whichever of the supported shapes it was given.
func ExtractLinkedInJobID(urlStr string) (string, error) {
	kind, jobID, err := linkedInJobID(urlStr)
	if err != nil {
		return "", err
	}
	if kind != linkedInKindJobView && kind != linkedInKindJobCollection {
		return "", fmt.Errorf("no job ID found in LinkedIn URL: %s", urlStr)
	}
	return jobID, nil
}
