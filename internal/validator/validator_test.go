package validator

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobpipe/pkg/models"
	"jobpipe/pkg/utils"
)

func validDetail() *models.JobDetail {
	return &models.JobDetail{
		JobID:    "abc123",
		Platform: utils.PlatformLinkedIn,
		URL:      "https://www.linkedin.com/jobs/view/abc123",
		JobDescription: strings.Repeat("We are looking for a strong candidate with experience and skills. ", 3) +
			"The team expects the candidate to have required qualifications and knowledge of our role.",
		Skills:    "Go, SQL, Docker",
		ScrapedAt: time.Now(),
	}
}

func TestValidatePassesOnWellFormedDetail(t *testing.T) {
	r := Validate(validDetail(), DefaultOptions())
	assert.True(t, r.OK, "expected pass, got reason=%s detail=%s", r.Reason, r.Detail)
}

func TestCheckJobIDRejectsShortOrInvalidShapes(t *testing.T) {
	assert.False(t, checkJobID("ab").OK)
	assert.False(t, checkJobID("has spaces!!").OK)
	assert.True(t, checkJobID("abc-123_xyz").OK)
}

func TestCheckURLEnforcesPlatformDomain(t *testing.T) {
	assert.True(t, checkURL(utils.PlatformLinkedIn, "https://www.linkedin.com/jobs/view/1").OK)
	assert.False(t, checkURL(utils.PlatformLinkedIn, "https://www.naukri.com/jobs/1").OK)
	assert.False(t, checkURL(utils.PlatformLinkedIn, "ftp://www.linkedin.com/jobs/1").OK)
	assert.False(t, checkURL(utils.PlatformLinkedIn, "not a url").OK)
}

func TestCheckDescriptionEnforcesLengthAndWordSanity(t *testing.T) {
	opts := DefaultOptions()
	assert.False(t, checkDescription("too short", opts).OK)
	assert.False(t, checkDescription(strings.Repeat("a", 200), opts).OK, "single long token fails word count")
	assert.True(t, checkDescription(validDetail().JobDescription, opts).OK)
}

func TestCheckPlaceholderCatchesKnownMarkers(t *testing.T) {
	for _, s := range []string{
		"Salary: TBD",
		"Description coming soon",
		"Lorem ipsum dolor sit amet",
		"This is a test job posting",
	} {
		assert.False(t, checkPlaceholder(s).OK, "expected %q to be flagged as placeholder", s)
	}
	assert.True(t, checkPlaceholder(validDetail().JobDescription).OK)
}

func TestCheckEnglishRequiresIndicatorThreshold(t *testing.T) {
	opts := DefaultOptions()
	assert.False(t, checkEnglish("bonjour monde ceci est un texte", opts).OK)
	assert.True(t, checkEnglish(validDetail().JobDescription, opts).OK)
}

func TestCheckPostedDateRejectsFutureAndStale(t *testing.T) {
	scrapedAt := time.Now()
	future := scrapedAt.Add(24 * time.Hour)
	stale := scrapedAt.AddDate(-6, 0, 0)
	recent := scrapedAt.AddDate(0, -1, 0)

	assert.False(t, checkPostedDate(&future, scrapedAt).OK)
	assert.False(t, checkPostedDate(&stale, scrapedAt).OK)
	assert.True(t, checkPostedDate(&recent, scrapedAt).OK)
	assert.True(t, checkPostedDate(nil, scrapedAt).OK)
}

func TestCheckSkillsEnforcesCountAndEntryLength(t *testing.T) {
	opts := DefaultOptions()
	assert.True(t, checkSkills("", opts).OK)
	assert.False(t, checkSkills("Go, a, SQL", opts).OK)

	many := strings.Repeat("Go,", 100)
	assert.False(t, checkSkills(many, opts).OK)
}

func TestValidateShortCircuitsOnFirstFailure(t *testing.T) {
	d := validDetail()
	d.JobID = "x" // too short, fails the very first check
	d.URL = ""    // would also fail, but must never be reached
	r := Validate(d, DefaultOptions())
	require.False(t, r.OK)
	assert.Equal(t, ReasonBadJobID, r.Reason)
}
