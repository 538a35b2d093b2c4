// Package pipeline implements the two-phase coordinator (spec §4.6): top
// up unscraped URLs via the harvester, drain them through the worker
// pool, and emit a session summary. The coordinator holds no persistent
// state of its own — a crash-and-restart is equivalent to a fresh
// invocation (§4.6 "Resume semantics").
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"jobpipe/internal/harvester"
	"jobpipe/internal/store"
	"jobpipe/internal/workerpool"
	"jobpipe/pkg/models"
	"jobpipe/pkg/utils"
)

// harvesterRunner is the subset of *harvester.Harvester the coordinator
// needs, kept as a package-local interface so tests can supply a fake
// without satisfying harvester's own unexported browser-facing interfaces.
type harvesterRunner interface {
	Harvest(ctx context.Context, platform utils.Platform, inputRole, location string, targetCount int) (harvester.Result, error)
}

// poolRunner is the subset of *workerpool.Pool the coordinator needs.
type poolRunner interface {
	Run(ctx context.Context, urls []models.JobURL) (workerpool.BatchResult, error)
}

// Coordinator wires the harvester and worker pool to a shared store.
type Coordinator struct {
	store     store.Store
	harvester harvesterRunner
	pool      poolRunner
	logger    *logrus.Logger
}

// New constructs a Coordinator.
func New(st store.Store, h harvesterRunner, pool poolRunner, logger *logrus.Logger) *Coordinator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Coordinator{store: st, harvester: h, pool: pool, logger: logger}
}

// Run executes one full pipeline invocation for q and returns the session
// summary (§4.6).
func (c *Coordinator) Run(ctx context.Context, q models.Query) (models.SessionSummary, error) {
	start := time.Now()

	if q.TargetCount == 0 {
		// B1: a zero target is a no-op, all counters zero.
		return models.SessionSummary{Outcome: models.OutcomeCompleted, Duration: time.Since(start)}, nil
	}

	if err := c.topUp(ctx, q); err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"platform": q.Platform,
			"role":     q.InputRole,
		}).Warn("pipeline: harvester returned a non-fatal error, continuing with existing backlog")
	}

	urls, err := c.store.ListUnscraped(ctx, q.Platform, q.InputRole, q.TargetCount)
	if err != nil {
		return models.SessionSummary{}, eris.Wrap(err, "pipeline: list_unscraped")
	}

	batch, err := c.pool.Run(ctx, urls)
	if err != nil {
		return models.SessionSummary{}, eris.Wrap(err, "pipeline: worker pool run")
	}

	summary := buildSummary(batch, start)
	c.logger.WithFields(logrus.Fields{
		"outcome":     summary.Outcome,
		"scraped_ok":  summary.ScrapedOK,
		"expired":     summary.ExpiredDeleted,
		"non_english": summary.NonEnglishDeleted,
		"failed":      summary.Failed,
	}).Info("pipeline: run complete")

	return summary, nil
}

// topUp runs the harvester when the current unscraped backlog for this
// (platform, role) is below target_count (§4.6 step 1).
func (c *Coordinator) topUp(ctx context.Context, q models.Query) error {
	current, err := c.store.ListUnscraped(ctx, q.Platform, q.InputRole, 0)
	if err != nil {
		return eris.Wrap(err, "pipeline: check unscraped backlog")
	}
	if len(current) >= q.TargetCount {
		return nil
	}

	need := q.TargetCount - len(current)
	_, err = c.harvester.Harvest(ctx, q.Platform, q.InputRole, q.Location, need)
	return err
}

func buildSummary(b workerpool.BatchResult, start time.Time) models.SessionSummary {
	outcome := models.OutcomeCompleted
	fatalReason := ""
	if b.AbortedLoginWall {
		outcome = models.OutcomeAbortedLoginWall
		fatalReason = "login_wall_detected"
	} else if b.Failed > 0 {
		// A zero-processed batch with no failures is a legitimate no-op
		// rerun (nothing left to scrape), not a partial failure.
		outcome = models.OutcomeCompletedPartial
	}

	var successRate float64
	if b.TotalProcessed > 0 {
		successRate = float64(b.ScrapedOK) / float64(b.TotalProcessed)
	}

	return models.SessionSummary{
		Outcome:           outcome,
		TotalProcessed:    b.TotalProcessed,
		ScrapedOK:         b.ScrapedOK,
		ExpiredDeleted:    b.ExpiredDeleted,
		NonEnglishDeleted: b.NonEnglishDeleted,
		Failed:            b.Failed,
		DuplicatesInBatch: b.DuplicatesInBatch,
		SuccessRate:       successRate,
		Duration:          time.Since(start),
		FatalReason:       fatalReason,
	}
}
