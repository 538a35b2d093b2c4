// Package harvester implements phase 1 (spec §4.2): scroll/paginate a
// listings page, extract stable per-job identifiers and URLs, normalise
// the actual role, and bulk-insert into the store.
package harvester

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"jobpipe/internal/role"
	"jobpipe/internal/store"
	"jobpipe/pkg/utils"
)

// Card is one listing-card extraction the browser layer produces per
// scroll/paginate cycle: a stable slug and the canonical detail URL.
type Card struct {
	Slug     string
	URL      string
	RawTitle string
}

// listingPage is the minimal surface the harvester needs from a listings
// page, kept separate from the detail-fetch pageHandle used by
// workerpool since harvesting drives scroll/paginate rather than
// single-shot navigation.
type listingPage interface {
	Open(ctx context.Context, platform utils.Platform, role, location string) error
	Scroll(ctx context.Context) error
	ExtractCards(ctx context.Context, platform utils.Platform) ([]Card, error)
	Close() error
}

// listingOpener constructs a listingPage for one query.
type listingOpener interface {
	OpenListingPage(ctx context.Context) (listingPage, error)
}

// Options bounds the harvester's scroll loop.
type Options struct {
	MaxScrollCyclesWithoutProgress int
	ScrollSettleDelay              time.Duration
	MaxRetries                     int
	BackoffBase                    time.Duration
}

// DefaultOptions mirrors §4.2's "two consecutive scroll cycles" stop rule.
func DefaultOptions() Options {
	return Options{
		MaxScrollCyclesWithoutProgress: 2,
		ScrollSettleDelay:              500 * time.Millisecond,
		MaxRetries:                     3,
		BackoffBase:                    2 * time.Second,
	}
}

// Harvester runs phase 1 for a single (platform, role, location) query.
type Harvester struct {
	opener     listingOpener
	store      store.Store
	normalizer *role.Normalizer
	opts       Options
	logger     *logrus.Logger
	cache      *DedupCache // optional accelerator, never correctness-bearing; nil is valid
}

// New constructs a Harvester. cache may be nil (falls back entirely to
// store.ExistingURLs).
func New(opener listingOpener, st store.Store, normalizer *role.Normalizer, opts Options, logger *logrus.Logger, cache *DedupCache) *Harvester {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Harvester{opener: opener, store: st, normalizer: normalizer, opts: opts, logger: logger, cache: cache}
}

// Result is what the harvester returns to the coordinator (§4.2
// "returns the count newly inserted").
type Result struct {
	Collected int
	Inserted  int
	Skipped   int
}

// Harvest collects up to targetCount unique URLs for (platform, inputRole,
// location) and persists them, pre-filtering against existing URLs to
// reduce write contention (§4.2 step 4). A bounded-retry-with-backoff
// failure to even open the listings page returns a partial (zero) result
// with a non-fatal error, never panicking the caller.
func (h *Harvester) Harvest(ctx context.Context, platform utils.Platform, inputRole, location string, targetCount int) (Result, error) {
	if targetCount <= 0 {
		return Result{}, nil
	}

	page, err := h.openWithRetry(ctx, platform, inputRole, location)
	if err != nil {
		return Result{}, eris.Wrap(err, "harvester: open listings page")
	}
	defer page.Close() //nolint:errcheck

	existing, err := h.store.ExistingURLs(ctx, platform)
	if err != nil {
		return Result{}, eris.Wrap(err, "harvester: load existing urls")
	}
	h.cache.Seed(ctx, platform, existing)

	cards := make(map[string]Card)
	emptyStreak := 0

	for len(cards) < targetCount && emptyStreak < h.opts.MaxScrollCyclesWithoutProgress {
		batch, err := page.ExtractCards(ctx, platform)
		if err != nil {
			return Result{}, eris.Wrap(err, "harvester: extract cards")
		}

		before := len(cards)
		for _, c := range batch {
			if _, ok := existing[c.URL]; ok {
				continue
			}
			if h.cache.Contains(ctx, platform, c.URL) {
				continue
			}
			if _, ok := cards[c.URL]; !ok {
				cards[c.URL] = c
			}
		}

		if len(cards) == before {
			emptyStreak++
		} else {
			emptyStreak = 0
		}

		if len(cards) >= targetCount {
			break
		}

		if err := page.Scroll(ctx); err != nil {
			return Result{}, eris.Wrap(err, "harvester: scroll")
		}
		time.Sleep(h.opts.ScrollSettleDelay)
	}

	rows := make([]store.NewJobURL, 0, len(cards))
	for _, c := range cards {
		actualRole := c.RawTitle
		if h.normalizer != nil {
			actualRole = h.normalizer.Normalize(c.RawTitle)
		}
		rows = append(rows, store.NewJobURL{JobID: c.Slug, ActualRole: actualRole, URL: c.URL})
		if len(rows) >= targetCount {
			break
		}
	}

	inserted, skipped, err := h.store.InsertURLs(ctx, platform, inputRole, rows)
	if err != nil {
		return Result{}, eris.Wrap(err, "harvester: insert_urls")
	}

	insertedURLs := make([]string, 0, len(rows))
	for _, r := range rows {
		insertedURLs = append(insertedURLs, r.URL)
	}
	h.cache.Add(ctx, platform, insertedURLs)

	return Result{Collected: len(cards), Inserted: inserted, Skipped: skipped}, nil
}

func (h *Harvester) openWithRetry(ctx context.Context, platform utils.Platform, inputRole, location string) (listingPage, error) {
	backoff := h.opts.BackoffBase
	var lastErr error

	for attempt := 0; attempt <= h.opts.MaxRetries; attempt++ {
		page, err := h.opener.OpenListingPage(ctx)
		if err == nil {
			if openErr := page.Open(ctx, platform, inputRole, location); openErr == nil {
				return page, nil
			} else {
				lastErr = openErr
				_ = page.Close()
			}
		} else {
			lastErr = err
		}

		if attempt == h.opts.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return nil, fmt.Errorf("harvester: exhausted retries opening listings page: %w", lastErr)
}
