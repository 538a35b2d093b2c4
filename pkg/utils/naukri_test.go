package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNaukriURL(t *testing.T) {
	assert.True(t, IsNaukriURL("https://www.naukri.com/job-listings-backend-engineer-acme-030824500001"))
	assert.True(t, IsNaukriURL("https://naukri.com/jobs"))
	assert.False(t, IsNaukriURL("https://www.linkedin.com/jobs/view/1"))
	assert.False(t, IsNaukriURL(""))
}

func TestExtractNaukriJobID(t *testing.T) {
	id, err := ExtractNaukriJobID("https://www.naukri.com/job-listings-senior-data-analyst-acme-corp-bengaluru-3-6-years-030824500001")
	require.NoError(t, err)
	assert.Equal(t, "030824500001", id)
}

func TestExtractNaukriJobIDRejectsNonNaukriURL(t *testing.T) {
	_, err := ExtractNaukriJobID("https://www.linkedin.com/jobs/view/1")
	assert.Error(t, err)
}

func TestExtractNaukriJobIDRejectsURLWithoutTrailingDigits(t *testing.T) {
	_, err := ExtractNaukriJobID("https://www.naukri.com/job-listings-backend-engineer-acme")
	assert.Error(t, err)
}

func TestExtractNaukriJobIDFromAttr(t *testing.T) {
	id, err := ExtractNaukriJobIDFromAttr("  030824500001  ")
	require.NoError(t, err)
	assert.Equal(t, "030824500001", id)
}

func TestExtractNaukriJobIDFromAttrRejectsEmpty(t *testing.T) {
	_, err := ExtractNaukriJobIDFromAttr("   ")
	assert.Error(t, err)
}

func TestExtractNaukriJobIDFromAttrRejectsMalformed(t *testing.T) {
	_, err := ExtractNaukriJobIDFromAttr("abc def")
	assert.Error(t, err)
}

func TestIsNaukriJobURL(t *testing.T) {
	assert.True(t, IsNaukriJobURL("https://www.naukri.com/job-listings-backend-engineer-acme-030824500001"))
	assert.False(t, IsNaukriJobURL("https://www.naukri.com/jobs-in-bengaluru"))
	assert.False(t, IsNaukriJobURL("https://www.linkedin.com/jobs/view/1"))
}
