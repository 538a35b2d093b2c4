package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRunIDIsUniqueAndWellFormed(t *testing.T) {
	a := GenerateRunID()
	b := GenerateRunID()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "500ms", FormatDuration(500*time.Millisecond))
	assert.Equal(t, "1.50s", FormatDuration(1500*time.Millisecond))
	assert.Equal(t, "2.0m", FormatDuration(2*time.Minute))
	assert.Equal(t, "1.5h", FormatDuration(90*time.Minute))
}

func TestContains(t *testing.T) {
	assert.True(t, Contains([]string{"go", "python"}, "go"))
	assert.False(t, Contains([]string{"go", "python"}, "rust"))
	assert.False(t, Contains(nil, "go"))
}

func TestGetStringOrDefault(t *testing.T) {
	assert.Equal(t, "value", GetStringOrDefault("value", "fallback"))
	assert.Equal(t, "fallback", GetStringOrDefault("", "fallback"))
}

func TestFindRegexMatch(t *testing.T) {
	matches := FindRegexMatch("job-id-4821", `job-id-(\d+)`)
	assert.Equal(t, []string{"job-id-4821", "4821"}, matches)

	assert.Nil(t, FindRegexMatch("anything", `(`))
	assert.Nil(t, FindRegexMatch("no match here", `\d+`))
}

func TestExtractDomainFromURL(t *testing.T) {
	assert.Equal(t, "www.linkedin.com", ExtractDomainFromURL("https://www.linkedin.com/jobs/view/1"))
	assert.Equal(t, "naukri.com", ExtractDomainFromURL("http://naukri.com:8080/jobs"))
}

func TestIsDevelopment(t *testing.T) {
	t.Setenv("GO_ENV", "")
	assert.True(t, IsDevelopment())

	t.Setenv("GO_ENV", "production")
	assert.False(t, IsDevelopment())

	t.Setenv("GO_ENV", "development")
	assert.True(t, IsDevelopment())
}
