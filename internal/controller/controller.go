// Package controller implements the adaptive concurrency controller
// (spec §4.4): a bounded outcome window, an AIMD concurrency/pacing
// policy, and a circuit breaker, mutated under a short critical section
// on every outcome report — grounded on the teacher's per-domain
// RateLimiter/CircuitBreaker shape (internal/scraper/workers/limiter.go)
// but re-modelled as a single process-wide value per §9 ("global state").
package controller

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Outcome is a per-task throughput signal reported to the controller.
// Expired / NonEnglish / LoginWall are not reported here — they carry no
// throughput information (§4.4).
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeTransientFail
	OutcomeRateLimited
)

const windowCapacity = 50

// Options configures the controller's bounds and evaluation cadence; the
// zero value is not usable, use DefaultOptions as a base.
type Options struct {
	MinConcurrency int
	MaxConcurrency int
	InitialConcurrency int

	MinDelay     float64
	MaxDelay     float64
	InitialDelay float64
	JitterRange  float64

	EvaluateEveryN int
	EvaluateEveryT time.Duration

	BreakerRateLimitThreshold int
	BreakerOpenFor            time.Duration
}

// DefaultOptions mirrors the documented defaults in §4.4 and §6.
func DefaultOptions() Options {
	return Options{
		MinConcurrency:            2,
		MaxConcurrency:            10,
		InitialConcurrency:        8,
		MinDelay:                  1.0,
		MaxDelay:                  8.0,
		InitialDelay:              2.5,
		JitterRange:               1.0,
		EvaluateEveryN:            10,
		EvaluateEveryT:            30 * time.Second,
		BreakerRateLimitThreshold: 3,
		BreakerOpenFor:            60 * time.Second,
	}
}

// Controller is a single shared value passed by reference into the
// worker pool — never a package-level singleton (§9 "global state"), so
// tests can construct isolated instances and a process can run multiple
// pipelines concurrently.
type Controller struct {
	mu sync.Mutex

	opts Options

	window []Outcome // ring buffer, oldest first, capacity windowCapacity

	concurrency int
	baseDelay   float64

	breakerOpen      bool
	breakerOpenUntil time.Time

	sinceEval int
	lastEval  time.Time

	// limiter enforces baseDelay as a process-wide token-bucket floor
	// shared across every worker goroutine, the same rate.Limiter the
	// teacher's per-domain RateLimiter wraps — re-tuned on every AIMD
	// evaluation instead of held fixed for the process lifetime.
	limiter *rate.Limiter

	logger *logrus.Logger
}

// New creates a controller at its initial concurrency/delay operating
// point.
func New(opts Options, logger *logrus.Logger) *Controller {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Controller{
		opts:        opts,
		concurrency: opts.InitialConcurrency,
		baseDelay:   opts.InitialDelay,
		limiter:     rate.NewLimiter(rateFromDelay(opts.InitialDelay), 1),
		lastEval:    time.Now(),
		logger:      logger,
	}
}

// rateFromDelay converts a per-task base delay in seconds to the
// equivalent steady-state events-per-second limit.
func rateFromDelay(baseDelay float64) rate.Limit {
	if baseDelay <= 0 {
		return rate.Inf
	}
	return rate.Limit(1.0 / baseDelay)
}

// Snapshot is the {concurrency, delay, breaker} triple a worker pool must
// re-read on every cycle rather than caching (§4.5).
type Snapshot struct {
	Concurrency int
	BaseDelay   float64
	BreakerOpen bool
}

// Snapshot returns the controller's current operating point.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshBreakerLocked()
	return Snapshot{
		Concurrency: c.concurrency,
		BaseDelay:   c.baseDelay,
		BreakerOpen: c.breakerOpen,
	}
}

// PacingDelay blocks the calling worker on the shared rate limiter (the
// process-wide baseDelay floor) and returns a uniform jitter in
// [0, jitter_range) for the caller to sleep on top, so concurrent workers
// don't all wake in lockstep (§4.4 "per-task pacing"). ctx cancellation
// aborts the wait.
func (c *Controller) PacingDelay(ctx context.Context) time.Duration {
	c.mu.Lock()
	limiter := c.limiter
	jitter := c.opts.JitterRange
	c.mu.Unlock()

	_ = limiter.Wait(ctx)

	return time.Duration(rand.Float64() * jitter * float64(time.Second))
}

// RecordOutcome appends an outcome to the bounded window and triggers a
// policy evaluation once N completed tasks or T seconds have elapsed
// since the last evaluation, whichever comes first (§4.4).
func (c *Controller) RecordOutcome(o Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.window = append(c.window, o)
	if len(c.window) > windowCapacity {
		c.window = c.window[len(c.window)-windowCapacity:]
	}
	c.sinceEval++

	if c.sinceEval >= c.opts.EvaluateEveryN || time.Since(c.lastEval) >= c.opts.EvaluateEveryT {
		c.evaluateLocked()
	}
}

func (c *Controller) refreshBreakerLocked() {
	if c.breakerOpen && !c.breakerOpenUntil.IsZero() && time.Now().After(c.breakerOpenUntil) {
		c.breakerOpen = false
		c.breakerOpenUntil = time.Time{}
		c.logger.WithField("component", "controller").Info("circuit breaker closed, resuming at reduced concurrency")
	}
}

// evaluateLocked applies the AIMD policy and circuit breaker check over
// the current window. Caller must hold c.mu.
func (c *Controller) evaluateLocked() {
	c.sinceEval = 0
	c.lastEval = time.Now()

	last10 := lastN(c.window, 10)
	rateLimitedLast10 := countOutcome(last10, OutcomeRateLimited)

	successes := countOutcome(c.window, OutcomeSuccess)
	transient := countOutcome(c.window, OutcomeTransientFail)
	rateLimited := countOutcome(c.window, OutcomeRateLimited)
	total := successes + transient + rateLimited

	var s float64
	if total > 0 {
		s = float64(successes) / float64(total)
	}

	switch {
	case rateLimitedLast10 > 0 || s < 0.5:
		c.concurrency = maxInt(c.opts.MinConcurrency, ceilDiv2(c.concurrency))
		c.baseDelay = minFloat(c.opts.MaxDelay, c.baseDelay*2)
		c.limiter.SetLimit(rateFromDelay(c.baseDelay))
	case s > 0.9 && c.concurrency < c.opts.MaxConcurrency:
		c.concurrency++
		c.baseDelay = maxFloat(c.opts.MinDelay, c.baseDelay-0.25)
		c.limiter.SetLimit(rateFromDelay(c.baseDelay))
	}

	if rateLimitedLast10 >= c.opts.BreakerRateLimitThreshold && !c.breakerOpen {
		c.breakerOpen = true
		c.breakerOpenUntil = time.Now().Add(c.opts.BreakerOpenFor)
		c.logger.WithFields(logrus.Fields{
			"component":    "controller",
			"rate_limited": rateLimitedLast10,
			"open_for":     c.opts.BreakerOpenFor,
		}).Warn("circuit breaker opened")
	}

	c.logger.WithFields(logrus.Fields{
		"component":   "controller",
		"concurrency": c.concurrency,
		"base_delay":  c.baseDelay,
		"success_rate": s,
	}).Debug("controller evaluated")
}

func lastN(window []Outcome, n int) []Outcome {
	if len(window) <= n {
		return window
	}
	return window[len(window)-n:]
}

func countOutcome(window []Outcome, target Outcome) int {
	n := 0
	for _, o := range window {
		if o == target {
			n++
		}
	}
	return n
}

func ceilDiv2(n int) int {
	return (n + 1) / 2
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
