// Package workerpool is the concurrent detail fetcher (spec §4.5): it
// honours the adaptive controller's current {concurrency, delay} on every
// cycle rather than caching it, retries transient failures with bounded
// backoff, rejects in-batch duplicates, and aborts the whole batch on a
// login wall. Grounded on the teacher's internal/scraper/workers/pool.go
// shape (pool struct, stats, logger fields) generalised to the spec's
// controller-driven dynamic concurrency instead of a fixed pool size.
package workerpool

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"jobpipe/internal/cleanup"
	"jobpipe/internal/controller"
	"jobpipe/internal/skills"
	"jobpipe/internal/statemachine"
	"jobpipe/internal/store"
	"jobpipe/internal/validator"
	"jobpipe/pkg/models"
	"jobpipe/pkg/utils"
)

// pageHandle is the subset of browser.Page the pool needs; kept as a
// package-local interface so tests can supply a fake without importing
// go-rod.
type pageHandle interface {
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	URL() string
	Title() string
	QueryText(selector string) (string, bool)
	Content() string
	Close() error
}

// pageOpener opens a fresh page per task (§4.5 "opens a fresh page").
type pageOpener interface {
	OpenPage(ctx context.Context) (pageHandle, error)
}

// Config bounds retry/timeout behaviour (§4.3, §5, §6).
type Config struct {
	NavTimeout        time.Duration
	TaskGrace         time.Duration
	MaxRetries        int
	BackoffBase       time.Duration
	BackoffFactor     float64
	MaxHardConcurrency int // ceiling used to size the goroutine pool; controller never exceeds this
	ValidatorOptions  validator.Options
}

// DefaultConfig mirrors the spec's documented defaults.
func DefaultConfig() Config {
	return Config{
		NavTimeout:         30 * time.Second,
		TaskGrace:          5 * time.Second,
		MaxRetries:         3,
		BackoffBase:        2 * time.Second,
		BackoffFactor:      2,
		MaxHardConcurrency: 10,
		ValidatorOptions:   validator.DefaultOptions(),
	}
}

// Pool is the phase-2 worker pool. It is stateless across Run calls
// except for its injected dependencies, matching the coordinator's
// "no persistent state of its own" design (§4.6).
type Pool struct {
	cfg        Config
	opener     pageOpener
	store      store.Store
	ctrl       *controller.Controller
	vocabulary *skills.Vocabulary
	logger     *logrus.Logger
}

// New constructs a worker pool. ctrl must be the single shared controller
// instance for this run (§9 "never a module-level singleton").
func New(cfg Config, opener pageOpener, st store.Store, ctrl *controller.Controller, vocab *skills.Vocabulary, logger *logrus.Logger) *Pool {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Pool{cfg: cfg, opener: opener, store: st, ctrl: ctrl, vocabulary: vocab, logger: logger}
}

// BatchResult aggregates the outcome of draining one batch of URLs,
// the raw material for the coordinator's session summary (§4.6 step 3).
type BatchResult struct {
	TotalProcessed    int
	ScrapedOK         int
	ExpiredDeleted    int
	NonEnglishDeleted int
	Failed            int
	DuplicatesInBatch int
	AbortedLoginWall  bool
}

type batchState struct {
	mu       sync.Mutex
	result   BatchResult
	seenURLs map[string]struct{}
	seenJobs map[string]struct{}
}

func (b *batchState) claim(url, jobID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.seenURLs[url]; ok {
		b.result.DuplicatesInBatch++
		b.result.TotalProcessed++
		return false
	}
	if _, ok := b.seenJobs[jobID]; ok {
		b.result.DuplicatesInBatch++
		b.result.TotalProcessed++
		return false
	}
	b.seenURLs[url] = struct{}{}
	b.seenJobs[jobID] = struct{}{}
	return true
}

func (b *batchState) record(fn func(*BatchResult)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(&b.result)
}

// Run drains urls through the pool, honouring the controller's
// concurrency snapshot on every cycle and aborting on login wall.
func (p *Pool) Run(ctx context.Context, urls []models.JobURL) (BatchResult, error) {
	state := &batchState{
		seenURLs: make(map[string]struct{}, len(urls)),
		seenJobs: make(map[string]struct{}, len(urls)),
	}

	if len(urls) == 0 {
		return BatchResult{}, nil
	}

	queue := make(chan models.JobURL, len(urls))
	for _, u := range urls {
		queue <- u
	}
	close(queue)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var aborted atomic.Bool
	var active atomic.Int32

	var wg sync.WaitGroup
	for i := 0; i < p.cfg.MaxHardConcurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.workerLoop(runCtx, queue, state, &aborted, &active, cancel)
		}()
	}
	wg.Wait()

	state.record(func(r *BatchResult) { r.AbortedLoginWall = aborted.Load() })
	return state.result, nil
}

func (p *Pool) workerLoop(ctx context.Context, queue <-chan models.JobURL, state *batchState, aborted *atomic.Bool, active *atomic.Int32, cancel context.CancelFunc) {
	for {
		if ctx.Err() != nil || aborted.Load() {
			return
		}

		p.waitForConcurrencySlot(ctx, active)
		if ctx.Err() != nil {
			active.Add(-1)
			return
		}

		u, ok := <-queue
		if !ok {
			active.Add(-1)
			return
		}

		if !state.claim(u.URL, u.JobID) {
			active.Add(-1)
			continue
		}

		p.pace(ctx)

		outcome := p.processOne(ctx, u, state)
		active.Add(-1)

		if outcome == statemachine.LoginWall {
			aborted.Store(true)
			cancel()
			return
		}
	}
}

// waitForConcurrencySlot blocks, re-reading the controller snapshot each
// pass, until fewer than snapshot.Concurrency workers are active (§4.5
// "must not cache" concurrency/pacing).
func (p *Pool) waitForConcurrencySlot(ctx context.Context, active *atomic.Int32) {
	for {
		if ctx.Err() != nil {
			return
		}
		snap := p.ctrl.Snapshot()
		if snap.BreakerOpen {
			select {
			case <-ctx.Done():
				return
			case <-time.After(500 * time.Millisecond):
				continue
			}
		}
		if int(active.Load()) < snap.Concurrency {
			active.Add(1)
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func (p *Pool) pace(ctx context.Context) {
	// PacingDelay blocks on the shared rate-limiter floor internally and
	// returns only the extra per-task jitter left to sleep.
	jitter := p.ctrl.PacingDelay(ctx)
	select {
	case <-ctx.Done():
	case <-time.After(jitter):
	}
}

// processOne runs §4.3's navigate-classify-validate-extract-persist
// sequence for a single URL, with bounded retry for retryable transient
// errors, and reports the resulting statemachine.State.
func (p *Pool) processOne(ctx context.Context, u models.JobURL, state *batchState) statemachine.State {
	backoff := p.cfg.BackoffBase
	var lastState statemachine.State

	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		classification, detail := p.fetchAndClassify(ctx, u)
		lastState = classification.State

		switch classification.State {
		case statemachine.Success:
			p.persistSuccess(ctx, detail, state)
			p.ctrl.RecordOutcome(controller.OutcomeSuccess)
			return statemachine.Success

		case statemachine.NonEnglish:
			p.logger.WithError(classification.Err()).WithField("url", u.URL).Debug("workerpool: dropping non-English listing")
			p.deleteAndCount(ctx, u, state, func(r *BatchResult) { r.NonEnglishDeleted++ })
			return statemachine.NonEnglish

		case statemachine.Expired:
			p.logger.WithError(classification.Err()).WithField("url", u.URL).Debug("workerpool: dropping expired listing")
			p.deleteAndCount(ctx, u, state, func(r *BatchResult) { r.ExpiredDeleted++ })
			return statemachine.Expired

		case statemachine.LoginWall:
			p.logger.WithError(classification.Err()).WithField("url", u.URL).Warn("workerpool: login wall encountered, aborting batch")
			state.record(func(r *BatchResult) { r.TotalProcessed++ })
			return statemachine.LoginWall

		case statemachine.TransientError:
			outcome := controller.OutcomeTransientFail
			if classification.Reason == "rate_limited" {
				outcome = controller.OutcomeRateLimited
			}
			if !classification.Retryable || attempt == p.cfg.MaxRetries {
				p.logger.WithError(classification.Err()).WithField("url", u.URL).Warn("workerpool: giving up on listing")
				p.ctrl.RecordOutcome(outcome)
				state.record(func(r *BatchResult) {
					r.TotalProcessed++
					r.Failed++
				})
				return statemachine.TransientError
			}
			p.ctrl.RecordOutcome(outcome)
			select {
			case <-ctx.Done():
				return statemachine.TransientError
			case <-time.After(backoff):
			}
			backoff = time.Duration(float64(backoff) * p.cfg.BackoffFactor)
			continue
		}
	}

	return lastState
}

// fetchAndClassify opens a fresh page, navigates, and runs the state
// machine plus (on the Success path) Gate 1 validation.
func (p *Pool) fetchAndClassify(ctx context.Context, u models.JobURL) (statemachine.Classification, *models.JobDetail) {
	page, err := p.opener.OpenPage(ctx)
	if err != nil {
		return statemachine.Classification{State: statemachine.TransientError, Reason: "open_page_failed", Retryable: true}, nil
	}
	defer page.Close() //nolint:errcheck

	taskCtx, cancel := context.WithTimeout(ctx, p.cfg.NavTimeout+p.cfg.TaskGrace)
	defer cancel()

	navErr := page.Navigate(taskCtx, u.URL, p.cfg.NavTimeout)

	result := statemachine.FetchResult{
		RequestedURL: u.URL,
		FinalURL:     page.URL(),
		Title:        page.Title(),
		PageText:     page.Content(),
		NavError:     navErr,
	}
	desc, present := firstMatch(page, descriptionSelectors[u.Platform])
	result.DescriptionPresent = present
	result.DescriptionText = desc

	classification := statemachine.Classify(result)
	if classification.State != statemachine.Success {
		return classification, nil
	}

	company, _ := firstMatch(page, companySelectors[u.Platform])
	cleaned := cleanup.CleanDescription(desc)
	extracted := skills.Extract(cleaned, p.vocabulary)

	detail := &models.JobDetail{
		JobID:          u.JobID,
		Platform:       u.Platform,
		ActualRole:     u.ActualRole,
		URL:            u.URL,
		JobDescription: cleaned,
		Skills:         cleanup.DedupSkills(extracted),
		CompanyName:    strings.TrimSpace(company),
		ScrapedAt:      nowFunc(),
	}

	gate := validator.Validate(detail, p.cfg.ValidatorOptions)
	if !gate.OK {
		if gate.Reason == validator.ReasonNonEnglish {
			return statemachine.ReclassifyNonEnglish(classification), detail
		}
		return statemachine.Classification{State: statemachine.TransientError, Reason: string(gate.Reason), Retryable: false}, nil
	}

	return classification, detail
}

func (p *Pool) persistSuccess(ctx context.Context, detail *models.JobDetail, state *batchState) {
	if detail == nil {
		return
	}
	isDuplicate, err := p.store.MarkScrapedAndStoreDetail(ctx, detail)
	if err != nil {
		p.logger.WithError(err).WithField("url", detail.URL).Error("workerpool: persist failed")
		state.record(func(r *BatchResult) {
			r.TotalProcessed++
			r.Failed++
		})
		return
	}
	state.record(func(r *BatchResult) {
		r.TotalProcessed++
		r.ScrapedOK++
		if isDuplicate {
			r.DuplicatesInBatch++
		}
	})
}

func (p *Pool) deleteAndCount(ctx context.Context, u models.JobURL, state *batchState, bump func(*BatchResult)) {
	if _, err := p.store.DeleteURLs(ctx, u.Platform, []string{u.URL}); err != nil {
		p.logger.WithError(err).WithField("url", u.URL).Error("workerpool: delete_urls failed")
	}
	state.record(func(r *BatchResult) {
		r.TotalProcessed++
		bump(r)
	})
}

// nowFunc is indirected so tests can pin ScrapedAt.
var nowFunc = time.Now
