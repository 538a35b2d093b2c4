package statemachine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifySuccessOnWellFormedResult(t *testing.T) {
	r := FetchResult{
		RequestedURL:       "https://www.linkedin.com/jobs/view/123",
		FinalURL:           "https://www.linkedin.com/jobs/view/123",
		Title:              "Senior Software Engineer at Acme",
		DescriptionPresent: true,
		DescriptionText:    "We are hiring a senior engineer.",
		PageText:           "We are hiring a senior engineer.",
	}
	c := Classify(r)
	assert.Equal(t, Success, c.State)
	assert.Nil(t, c.Err())
}

func TestClassifyNavErrorTakesPriorityOverEverything(t *testing.T) {
	r := FetchResult{NavError: errors.New("net/http: timeout"), Title: "sign in"}
	c := Classify(r)
	assert.Equal(t, TransientError, c.State)
	assert.Equal(t, "navigation_error", c.Reason)
	assert.True(t, c.Retryable)
}

func TestClassifyRateLimitPrefersHTTPStatusOverContent(t *testing.T) {
	status := 429
	r := FetchResult{HTTPStatus: &status, PageText: "nothing to see here"}
	c := Classify(r)
	assert.Equal(t, TransientError, c.State)
	assert.Equal(t, "rate_limited", c.Reason)
	assert.True(t, c.Retryable)
}

func TestClassifyRateLimitFallsBackToContentWhenStatusMissing(t *testing.T) {
	r := FetchResult{PageText: "Too many requests, please try again later."}
	c := Classify(r)
	assert.Equal(t, TransientError, c.State)
	assert.Equal(t, "rate_limited", c.Reason)
}

func TestClassifyLoginWallChecksURLAndContent(t *testing.T) {
	c := Classify(FetchResult{FinalURL: "https://www.linkedin.com/authwall?x=1"})
	assert.Equal(t, LoginWall, c.State)

	c = Classify(FetchResult{FinalURL: "https://www.linkedin.com/jobs/view/1", PageText: "Please log in to view this page"})
	assert.Equal(t, LoginWall, c.State)
}

func TestClassifyExpiredBeforeContentValidation(t *testing.T) {
	r := FetchResult{
		FinalURL:           "https://www.naukri.com/job/1",
		Title:              "",
		DescriptionPresent: true,
		DescriptionText:    "this job posting no longer exists",
		PageText:           "this job posting no longer exists",
	}
	c := Classify(r)
	assert.Equal(t, Expired, c.State)
}

func TestClassifyExpiredByURLMarker(t *testing.T) {
	c := Classify(FetchResult{FinalURL: "https://www.linkedin.com/jobs/view/1?status=expired", DescriptionPresent: true, DescriptionText: "x"})
	assert.Equal(t, Expired, c.State)
	assert.Equal(t, "url_expiration_marker", c.Reason)
}

func TestClassifyMissingSelectorsIsRetryable(t *testing.T) {
	c := Classify(FetchResult{FinalURL: "https://www.linkedin.com/jobs/view/1", Title: "Backend Engineer", DescriptionPresent: false})
	assert.Equal(t, TransientError, c.State)
	assert.Equal(t, "missing_selectors", c.Reason)
	assert.True(t, c.Retryable)
}

func TestClassifyEmptyDescriptionIsNotRetryable(t *testing.T) {
	c := Classify(FetchResult{FinalURL: "https://www.linkedin.com/jobs/view/1", Title: "Backend Engineer", DescriptionPresent: true, DescriptionText: "   "})
	assert.Equal(t, TransientError, c.State)
	assert.Equal(t, "empty_description", c.Reason)
	assert.False(t, c.Retryable)
}

func TestReclassifyNonEnglishDowngradesSuccess(t *testing.T) {
	c := ReclassifyNonEnglish(Classification{State: Success})
	assert.Equal(t, NonEnglish, c.State)
	assert.Equal(t, "failed_english_heuristic", c.Reason)
}

func TestErrReturnsNilOnlyForSuccess(t *testing.T) {
	assert.Nil(t, Classification{State: Success}.Err())
	for _, c := range []Classification{
		{State: Expired, Reason: "r"},
		{State: LoginWall, Reason: "r"},
		{State: NonEnglish, Reason: "r"},
		{State: TransientError, Reason: "rate_limited"},
		{State: TransientError, Reason: "navigation_error"},
	} {
		assert.Error(t, c.Err(), "state %v should produce a non-nil error", c.State)
	}
}

func TestIsRateLimitedIgnoresContentWhenStatusPresentAndNotRateLimited(t *testing.T) {
	status := 200
	assert.False(t, IsRateLimited(FetchResult{HTTPStatus: &status, PageText: "too many requests"}))
}
