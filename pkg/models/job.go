package models

import (
	"time"

	"jobpipe/pkg/utils"
)

// JobURL is the phase-1 harvested row (§3 JobUrl). Identity is
// (Platform, URL); JobID is the stable per-platform slug.
type JobURL struct {
	JobID      string         `json:"job_id" validate:"required"`
	Platform   utils.Platform `json:"platform" validate:"required"`
	InputRole  string         `json:"input_role" validate:"required"`
	ActualRole string         `json:"actual_role" validate:"required"`
	URL        string         `json:"url" validate:"required,url"`
	Scraped    bool           `json:"scraped"`
}

// JobDetail is the phase-2 persisted row (§3 JobDetail).
type JobDetail struct {
	JobID          string         `json:"job_id" validate:"required"`
	Platform       utils.Platform `json:"platform" validate:"required"`
	ActualRole     string         `json:"actual_role" validate:"required"`
	URL            string         `json:"url" validate:"required,url"`
	JobDescription string         `json:"job_description"`
	Skills         string         `json:"skills"`
	CompanyName    string         `json:"company_name"`
	PostedDate     *time.Time     `json:"posted_date,omitempty"`
	ScrapedAt      time.Time      `json:"scraped_at"`
}

// SessionSummary is returned by the pipeline coordinator at the end of a
// run (§4.6 step 3).
type SessionSummary struct {
	Outcome           Outcome       `json:"outcome"`
	TotalProcessed    int           `json:"total_processed"`
	ScrapedOK         int           `json:"scraped_ok"`
	ExpiredDeleted    int           `json:"expired_deleted"`
	NonEnglishDeleted int           `json:"non_english_deleted"`
	Failed            int           `json:"failed"`
	DuplicatesInBatch int           `json:"duplicates_in_batch"`
	SuccessRate       float64       `json:"success_rate"`
	Duration          time.Duration `json:"duration"`
	FatalReason       string        `json:"fatal_reason,omitempty"`
}

// Outcome classifies how a coordinator run ended (§7).
type Outcome string

const (
	OutcomeCompleted        Outcome = "completed"
	OutcomeCompletedPartial Outcome = "completed_partial"
	OutcomeAbortedLoginWall Outcome = "aborted_login_wall"
)

// Query is the caller-supplied input to the coordinator (§4.6).
type Query struct {
	Platform    utils.Platform `json:"platform" validate:"required"`
	InputRole   string         `json:"input_role" validate:"required"`
	Location    string         `json:"location"`
	TargetCount int            `json:"target_count" validate:"min=0,max=10000"`
}
