package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsLinkedInURL(t *testing.T) {
	assert.True(t, IsLinkedInURL("https://www.linkedin.com/jobs/view/123"))
	assert.True(t, IsLinkedInURL("https://linkedin.com/in/someone"))
	assert.False(t, IsLinkedInURL("https://naukri.com/job-listings-1234560"))
	assert.False(t, IsLinkedInURL(""))
	assert.False(t, IsLinkedInURL("://not a url"))
}

func TestLinkedInJobIDClassifiesJobView(t *testing.T) {
	kind, jobID, err := linkedInJobID("https://www.linkedin.com/jobs/view/3912345678/?trk=feed")
	require.NoError(t, err)
	assert.Equal(t, linkedInKindJobView, kind)
	assert.Equal(t, "3912345678", jobID)
}

func TestLinkedInJobIDClassifiesJobCollection(t *testing.T) {
	kind, jobID, err := linkedInJobID("https://www.linkedin.com/jobs/collections/recommended/?currentJobId=4012345")
	require.NoError(t, err)
	assert.Equal(t, linkedInKindJobCollection, kind)
	assert.Equal(t, "4012345", jobID)
}

func TestLinkedInJobIDCollectionWithoutJobIDIsNonJob(t *testing.T) {
	kind, _, err := linkedInJobID("https://www.linkedin.com/jobs/collections/recommended/")
	require.NoError(t, err)
	assert.Equal(t, linkedInKindNonJob, kind)
}

func TestLinkedInJobIDNonJobPaths(t *testing.T) {
	kind, _, err := linkedInJobID("https://www.linkedin.com/in/someone")
	require.NoError(t, err)
	assert.Equal(t, linkedInKindNonJob, kind)
}

func TestLinkedInJobIDRejectsNonLinkedInHost(t *testing.T) {
	_, _, err := linkedInJobID("https://example.com/jobs/view/1")
	assert.Error(t, err)
}

func TestConvertToPublicLinkedInJobURL(t *testing.T) {
	public, err := ConvertToPublicLinkedInJobURL("https://www.linkedin.com/jobs/collections/recommended/?currentJobId=4012345")
	require.NoError(t, err)
	assert.Equal(t, "https://www.linkedin.com/jobs/view/4012345", public)
}

func TestConvertToPublicLinkedInJobURLRejectsNonJob(t *testing.T) {
	_, err := ConvertToPublicLinkedInJobURL("https://www.linkedin.com/in/someone")
	assert.Error(t, err)
	var customErr *CustomError
	require.ErrorAs(t, err, &customErr)
}

func TestIsLinkedInJobURL(t *testing.T) {
	assert.True(t, IsLinkedInJobURL("https://www.linkedin.com/jobs/view/123/"))
	assert.False(t, IsLinkedInJobURL("https://www.linkedin.com/in/someone"))
	assert.False(t, IsLinkedInJobURL("https://naukri.com/job-listings-123456"))
}

func TestExtractLinkedInJobID(t *testing.T) {
	id, err := ExtractLinkedInJobID("https://www.linkedin.com/jobs/view/987654321")
	require.NoError(t, err)
	assert.Equal(t, "987654321", id)

	_, err = ExtractLinkedInJobID("https://www.linkedin.com/in/someone")
	assert.Error(t, err)
}
