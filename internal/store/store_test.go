package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"jobpipe/pkg/models"
	"jobpipe/pkg/utils"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "jobpipe.db")
	s, err := Open(dsn, 4)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestInsertURLsDedupesWithinAndAcrossCalls(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rows := []NewJobURL{
		{JobID: "a1", ActualRole: "Software Engineer", URL: "https://linkedin.com/jobs/view/a1"},
		{JobID: "a2", ActualRole: "Software Engineer", URL: "https://linkedin.com/jobs/view/a2"},
	}
	inserted, skipped, err := s.InsertURLs(ctx, utils.PlatformLinkedIn, "software engineer", rows)
	require.NoError(t, err)
	require.Equal(t, 2, inserted)
	require.Equal(t, 0, skipped)

	// Re-inserting the same rows plus one new one: only the new one lands.
	rows = append(rows, NewJobURL{JobID: "a3", ActualRole: "Software Engineer", URL: "https://linkedin.com/jobs/view/a3"})
	inserted, skipped, err = s.InsertURLs(ctx, utils.PlatformLinkedIn, "software engineer", rows)
	require.NoError(t, err)
	require.Equal(t, 1, inserted)
	require.Equal(t, 2, skipped)
}

func TestListUnscrapedRespectsLimitAndScope(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rows := []NewJobURL{
		{JobID: "b1", ActualRole: "Data Analyst", URL: "https://naukri.com/jobs/b1"},
		{JobID: "b2", ActualRole: "Data Analyst", URL: "https://naukri.com/jobs/b2"},
		{JobID: "b3", ActualRole: "Data Analyst", URL: "https://naukri.com/jobs/b3"},
	}
	_, _, err := s.InsertURLs(ctx, utils.PlatformNaukri, "data analyst", rows)
	require.NoError(t, err)

	got, err := s.ListUnscraped(ctx, utils.PlatformNaukri, "data analyst", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)

	all, err := s.ListUnscraped(ctx, utils.PlatformNaukri, "data analyst", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)

	none, err := s.ListUnscraped(ctx, utils.PlatformLinkedIn, "data analyst", 0)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestMarkScrapedAndStoreDetailIsAtomicAndIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	url := "https://linkedin.com/jobs/view/c1"
	_, _, err := s.InsertURLs(ctx, utils.PlatformLinkedIn, "backend engineer", []NewJobURL{
		{JobID: "c1", ActualRole: "Backend Engineer", URL: url},
	})
	require.NoError(t, err)

	detail := &models.JobDetail{
		JobID: "c1", Platform: utils.PlatformLinkedIn, ActualRole: "Backend Engineer",
		URL: url, JobDescription: "Build things.", Skills: "Go, SQL", ScrapedAt: time.Now(),
	}

	isDup, err := s.MarkScrapedAndStoreDetail(ctx, detail)
	require.NoError(t, err)
	require.False(t, isDup)

	unscraped, err := s.ListUnscraped(ctx, utils.PlatformLinkedIn, "backend engineer", 0)
	require.NoError(t, err)
	require.Empty(t, unscraped, "the url row should now be flagged scraped")

	// Calling again with the same job_id/url is a no-op duplicate, not an error.
	isDup, err = s.MarkScrapedAndStoreDetail(ctx, detail)
	require.NoError(t, err)
	require.True(t, isDup)
}

func TestMarkScrapedAndStoreDetailBackfillsMissingURLRow(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	detail := &models.JobDetail{
		JobID: "orphan1", Platform: utils.PlatformNaukri, ActualRole: "QA Engineer",
		URL: "https://naukri.com/jobs/orphan1", JobDescription: "Test things.", ScrapedAt: time.Now(),
	}

	isDup, err := s.MarkScrapedAndStoreDetail(ctx, detail)
	require.NoError(t, err)
	require.False(t, isDup)

	existing, err := s.ExistingURLs(ctx, utils.PlatformNaukri)
	require.NoError(t, err)
	require.Contains(t, existing, detail.URL)
}

func TestDeleteURLsBatchesSingleStatement(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rows := []NewJobURL{
		{JobID: "d1", ActualRole: "Designer", URL: "https://linkedin.com/jobs/view/d1"},
		{JobID: "d2", ActualRole: "Designer", URL: "https://linkedin.com/jobs/view/d2"},
		{JobID: "d3", ActualRole: "Designer", URL: "https://linkedin.com/jobs/view/d3"},
	}
	_, _, err := s.InsertURLs(ctx, utils.PlatformLinkedIn, "designer", rows)
	require.NoError(t, err)

	n, err := s.DeleteURLs(ctx, utils.PlatformLinkedIn, []string{rows[0].URL, rows[1].URL})
	require.NoError(t, err)
	require.Equal(t, 2, n)

	remaining, err := s.ListUnscraped(ctx, utils.PlatformLinkedIn, "designer", 0)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	require.Equal(t, rows[2].URL, remaining[0].URL)
}

func TestCountScrapedByPlatform(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i, p := range []utils.Platform{utils.PlatformLinkedIn, utils.PlatformLinkedIn, utils.PlatformNaukri} {
		detail := &models.JobDetail{
			JobID: "e" + string(rune('0'+i)), Platform: p, ActualRole: "Role",
			URL: "https://example.com/" + string(rune('0'+i)), ScrapedAt: time.Now(),
		}
		_, err := s.MarkScrapedAndStoreDetail(ctx, detail)
		require.NoError(t, err)
	}

	counts, err := s.CountScrapedByPlatform(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, counts[utils.PlatformLinkedIn])
	require.Equal(t, 1, counts[utils.PlatformNaukri])
}
