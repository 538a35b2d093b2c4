package harvester

import (
	"context"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobpipe/internal/role"
	"jobpipe/internal/store"
	"jobpipe/pkg/models"
	"jobpipe/pkg/utils"
)

type fakeListingPage struct {
	batches [][]Card
	idx     int
	scrolls int
	closed  bool
}

func (p *fakeListingPage) Open(ctx context.Context, platform utils.Platform, role, location string) error {
	return nil
}
func (p *fakeListingPage) Scroll(ctx context.Context) error {
	p.scrolls++
	return nil
}
func (p *fakeListingPage) ExtractCards(ctx context.Context, platform utils.Platform) ([]Card, error) {
	if p.idx >= len(p.batches) {
		return nil, nil
	}
	b := p.batches[p.idx]
	p.idx++
	return b, nil
}
func (p *fakeListingPage) Close() error { p.closed = true; return nil }

type fakeListingOpener struct {
	page *fakeListingPage
	err  error
}

func (o *fakeListingOpener) OpenListingPage(ctx context.Context) (listingPage, error) {
	if o.err != nil {
		return nil, o.err
	}
	return o.page, nil
}

type fakeURLStore struct {
	existing map[string]struct{}
	inserted []store.NewJobURL
}

func (s *fakeURLStore) InsertURLs(ctx context.Context, platform utils.Platform, inputRole string, rows []store.NewJobURL) (int, int, error) {
	s.inserted = append(s.inserted, rows...)
	return len(rows), 0, nil
}
func (s *fakeURLStore) ListUnscraped(ctx context.Context, platform utils.Platform, role string, limit int) ([]models.JobURL, error) {
	return nil, nil
}
func (s *fakeURLStore) MarkScrapedAndStoreDetail(ctx context.Context, detail *models.JobDetail) (bool, error) {
	return false, nil
}
func (s *fakeURLStore) DeleteURLs(ctx context.Context, platform utils.Platform, urls []string) (int, error) {
	return 0, nil
}
func (s *fakeURLStore) CountScrapedByPlatform(ctx context.Context) (map[utils.Platform]int, error) {
	return nil, nil
}
func (s *fakeURLStore) ExistingURLs(ctx context.Context, platform utils.Platform) (map[string]struct{}, error) {
	if s.existing == nil {
		return map[string]struct{}{}, nil
	}
	return s.existing, nil
}
func (s *fakeURLStore) Close() error { return nil }

func TestHarvestCollectsUntilTargetCount(t *testing.T) {
	page := &fakeListingPage{batches: [][]Card{
		{{Slug: "a1", URL: "https://linkedin.com/jobs/view/a1", RawTitle: "Software Engineer"}},
		{{Slug: "a2", URL: "https://linkedin.com/jobs/view/a2", RawTitle: "Data Analyst"}},
	}}
	st := &fakeURLStore{}
	h := New(&fakeListingOpener{page: page}, st, nil, DefaultOptions(), logrus.New(), nil)

	res, err := h.Harvest(context.Background(), utils.PlatformLinkedIn, "software engineer", "", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Collected)
	assert.Equal(t, 2, res.Inserted)
	assert.True(t, page.closed)
}

func TestHarvestStopsAfterConsecutiveEmptyScrollCycles(t *testing.T) {
	page := &fakeListingPage{batches: [][]Card{
		{{Slug: "b1", URL: "https://linkedin.com/jobs/view/b1", RawTitle: "QA"}},
		{}, // no progress
		{}, // two in a row -> stop
	}}
	st := &fakeURLStore{}
	h := New(&fakeListingOpener{page: page}, st, nil, DefaultOptions(), logrus.New(), nil)

	res, err := h.Harvest(context.Background(), utils.PlatformLinkedIn, "qa", "", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Collected)
}

func TestHarvestSkipsCardsAlreadyInStore(t *testing.T) {
	existingURL := "https://linkedin.com/jobs/view/c1"
	page := &fakeListingPage{batches: [][]Card{
		{
			{Slug: "c1", URL: existingURL, RawTitle: "Engineer"},
			{Slug: "c2", URL: "https://linkedin.com/jobs/view/c2", RawTitle: "Engineer"},
		},
	}}
	st := &fakeURLStore{existing: map[string]struct{}{existingURL: {}}}
	h := New(&fakeListingOpener{page: page}, st, nil, DefaultOptions(), logrus.New(), nil)

	res, err := h.Harvest(context.Background(), utils.PlatformLinkedIn, "engineer", "", 5)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Collected)
	assert.Len(t, st.inserted, 1)
	assert.Equal(t, "c2", st.inserted[0].JobID)
}

func TestHarvestNormalizesActualRole(t *testing.T) {
	path := t.TempDir() + "/roles.json"
	writeRoleJSONForHarvesterTest(t, path)
	normalizer, err := role.Load(path)
	require.NoError(t, err)

	page := &fakeListingPage{batches: [][]Card{
		{{Slug: "d1", URL: "https://linkedin.com/jobs/view/d1", RawTitle: "Sr. Software Engineer"}},
	}}
	st := &fakeURLStore{}
	h := New(&fakeListingOpener{page: page}, st, normalizer, DefaultOptions(), logrus.New(), nil)

	_, err = h.Harvest(context.Background(), utils.PlatformLinkedIn, "software engineer", "", 1)
	require.NoError(t, err)
	require.Len(t, st.inserted, 1)
	assert.Equal(t, "Software Engineer", st.inserted[0].ActualRole)
}

func TestHarvestZeroTargetCountIsANoop(t *testing.T) {
	st := &fakeURLStore{}
	h := New(&fakeListingOpener{page: &fakeListingPage{}}, st, nil, DefaultOptions(), logrus.New(), nil)
	res, err := h.Harvest(context.Background(), utils.PlatformLinkedIn, "x", "", 0)
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
	assert.Empty(t, st.inserted)
}

func TestHarvestWrapsOpenFailureAfterRetries(t *testing.T) {
	st := &fakeURLStore{}
	opts := DefaultOptions()
	opts.MaxRetries = 0
	opts.BackoffBase = 0
	h := New(&fakeListingOpener{err: assertOpenErr{}}, st, nil, opts, logrus.New(), nil)

	_, err := h.Harvest(context.Background(), utils.PlatformLinkedIn, "x", "", 1)
	assert.Error(t, err)
}

type assertOpenErr struct{}

func (assertOpenErr) Error() string { return "could not launch browser" }

func writeRoleJSONForHarvesterTest(t *testing.T, path string) {
	t.Helper()
	data := `[{"name":"Software Engineer","patterns":["sr\\.?\\s*software\\s*engineer","^software\\s*engineer"]}]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}
