package utils

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// IsNaukriURL checks if a URL belongs to naukri.com.
func IsNaukriURL(urlStr string) bool {
	if urlStr == "" {
		return false
	}
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return false
	}
	hostname := strings.ToLower(parsedURL.Hostname())
	return hostname == "naukri.com" || hostname == "www.naukri.com"
}

// naukriJobIDPattern matches the numeric job id Naukri embeds as the final
// dash-separated segment of a job-detail URL, e.g.
// https://www.naukri.com/job-listings-senior-data-analyst-acme-corp-bengaluru-3-6-years-030824500001
var naukriJobIDPattern = regexp.MustCompile(`-(\d{6,})$`)

// ExtractNaukriJobID extracts the stable numeric job id from a Naukri job
// detail URL. Naukri job cards also carry the id directly in a
// `data-job-id` attribute; ExtractNaukriJobIDFromAttr should be preferred
// over URL parsing whenever the harvester has that attribute available.
func ExtractNaukriJobID(urlStr string) (string, error) {
	if !IsNaukriURL(urlStr) {
		return "", fmt.Errorf("not a Naukri URL: %s", urlStr)
	}
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	matches := naukriJobIDPattern.FindStringSubmatch(parsedURL.Path)
	if len(matches) < 2 {
		return "", fmt.Errorf("no job ID found in Naukri URL: %s", urlStr)
	}
	return matches[1], nil
}

// ExtractNaukriJobIDFromAttr validates and normalises a job id sourced
// directly from a listing card's `data-job-id` attribute.
func ExtractNaukriJobIDFromAttr(attr string) (string, error) {
	attr = strings.TrimSpace(attr)
	if attr == "" {
		return "", fmt.Errorf("empty data-job-id attribute")
	}
	if !regexp.MustCompile(`^[A-Za-z0-9_-]+$`).MatchString(attr) {
		return "", fmt.Errorf("malformed data-job-id attribute: %s", attr)
	}
	return attr, nil
}

// IsNaukriJobURL reports whether the URL looks like a Naukri job detail page.
func IsNaukriJobURL(urlStr string) bool {
	if !IsNaukriURL(urlStr) {
		return false
	}
	_, err := ExtractNaukriJobID(urlStr)
	return err == nil
}
