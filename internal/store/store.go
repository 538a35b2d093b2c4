// Package store implements the two-table persistent state described in
// spec §3 and §6: job_urls (phase-1 harvested rows) and jobs (phase-2
// detail rows), backed by an embedded pure-Go SQLite engine.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite" // register the pure-Go SQLite driver

	"jobpipe/pkg/models"
	"jobpipe/pkg/utils"
)

const schema = `
CREATE TABLE IF NOT EXISTS job_urls (
	job_id      TEXT NOT NULL,
	platform    TEXT NOT NULL,
	input_role  TEXT NOT NULL,
	actual_role TEXT NOT NULL,
	url         TEXT NOT NULL,
	scraped     INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (platform, url)
);

CREATE INDEX IF NOT EXISTS idx_job_urls_platform_role_scraped
	ON job_urls(platform, input_role, scraped);

CREATE TABLE IF NOT EXISTS jobs (
	job_id          TEXT PRIMARY KEY,
	platform        TEXT NOT NULL,
	actual_role     TEXT NOT NULL,
	url             TEXT NOT NULL UNIQUE,
	job_description TEXT,
	skills          TEXT,
	company_name    TEXT,
	posted_date     DATETIME,
	scraped_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

// Store is the Store interface described in §4.1. It owns exclusive access
// to on-disk pipeline state; every other component interacts with
// persisted data only through this interface.
type Store interface {
	InsertURLs(ctx context.Context, platform utils.Platform, inputRole string, rows []NewJobURL) (inserted, skipped int, err error)
	ListUnscraped(ctx context.Context, platform utils.Platform, role string, limit int) ([]models.JobURL, error)
	MarkScrapedAndStoreDetail(ctx context.Context, detail *models.JobDetail) (isDuplicate bool, err error)
	DeleteURLs(ctx context.Context, platform utils.Platform, urls []string) (int, error)
	CountScrapedByPlatform(ctx context.Context) (map[utils.Platform]int, error)
	ExistingURLs(ctx context.Context, platform utils.Platform) (map[string]struct{}, error)
	Close() error
}

// NewJobURL is the per-row input to InsertURLs; ActualRole is computed by
// the harvester before the call (§4.8 role normalisation).
type NewJobURL struct {
	JobID      string
	ActualRole string
	URL        string
}

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database file at dsn and
// runs the schema migration. WAL mode and a busy timeout are embedded in
// the DSN so every pooled connection picks them up, the same pattern
// sqlite.go in the research-cli pack uses.
func Open(dsn string, maxOpenConns int) (*SQLiteStore, error) {
	if !strings.Contains(dsn, "?") {
		dsn += "?"
	} else {
		dsn += "&"
	}
	dsn += "_pragma=busy_timeout(30000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "store: open")
	}
	if maxOpenConns <= 0 {
		maxOpenConns = 10
	}
	db.SetMaxOpenConns(maxOpenConns)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "store: ping")
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return eris.Wrap(err, "store: migrate")
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// InsertURLs dedups by (platform, url) at insert time (§4.1). It reports
// how many rows were newly inserted versus how many already existed.
func (s *SQLiteStore) InsertURLs(ctx context.Context, platform utils.Platform, inputRole string, rows []NewJobURL) (int, int, error) {
	if len(rows) == 0 {
		return 0, 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, eris.Wrap(err, "store: begin insert_urls tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO job_urls (job_id, platform, input_role, actual_role, url, scraped)
		VALUES (?, ?, ?, ?, ?, 0)
		ON CONFLICT(platform, url) DO NOTHING
	`)
	if err != nil {
		return 0, 0, eris.Wrap(err, "store: prepare insert_urls")
	}
	defer stmt.Close() //nolint:errcheck

	inserted := 0
	for _, r := range rows {
		res, err := stmt.ExecContext(ctx, r.JobID, string(platform), inputRole, r.ActualRole, r.URL)
		if err != nil {
			return 0, 0, eris.Wrapf(err, "store: insert url %s", r.URL)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, 0, eris.Wrap(err, "store: rows affected")
		}
		if n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, eris.Wrap(err, "store: commit insert_urls")
	}

	return inserted, len(rows) - inserted, nil
}

// ListUnscraped returns unscraped rows for (platform, role) in insertion
// order, up to limit (§4.1). A limit <= 0 means "no limit".
func (s *SQLiteStore) ListUnscraped(ctx context.Context, platform utils.Platform, role string, limit int) ([]models.JobURL, error) {
	query := `
		SELECT job_id, platform, input_role, actual_role, url, scraped
		FROM job_urls
		WHERE platform = ? AND input_role = ? AND scraped = 0
		ORDER BY rowid ASC
	`
	args := []any{string(platform), role}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "store: list_unscraped")
	}
	defer rows.Close() //nolint:errcheck

	var out []models.JobURL
	for rows.Next() {
		var ju models.JobURL
		var platformStr string
		var scrapedInt int
		if err := rows.Scan(&ju.JobID, &platformStr, &ju.InputRole, &ju.ActualRole, &ju.URL, &scrapedInt); err != nil {
			return nil, eris.Wrap(err, "store: scan job_url")
		}
		ju.Platform = utils.Platform(platformStr)
		ju.Scraped = scrapedInt != 0
		out = append(out, ju)
	}
	return out, eris.Wrap(rows.Err(), "store: list_unscraped iterate")
}

// MarkScrapedAndStoreDetail is the linearisation point for a URL (§5): a
// single atomic transaction inserts the detail row (treating an existing
// url as a no-op duplicate per I2) and flips the url row's scraped flag
// (I3). Returns isDuplicate=true when the detail already existed.
func (s *SQLiteStore) MarkScrapedAndStoreDetail(ctx context.Context, detail *models.JobDetail) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, eris.Wrap(err, "store: begin mark_scraped tx")
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, `
		INSERT INTO jobs (job_id, platform, actual_role, url, job_description, skills, company_name, posted_date, scraped_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO NOTHING
	`,
		detail.JobID, string(detail.Platform), detail.ActualRole, detail.URL,
		detail.JobDescription, detail.Skills, detail.CompanyName,
		nullableTime(detail.PostedDate), detail.ScrapedAt,
	)
	if err != nil {
		return false, eris.Wrapf(err, "store: insert job detail %s", detail.URL)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, eris.Wrap(err, "store: rows affected")
	}
	isDuplicate := n == 0

	markRes, err := tx.ExecContext(ctx, `
		UPDATE job_urls SET scraped = 1 WHERE platform = ? AND url = ?
	`, string(detail.Platform), detail.URL)
	if err != nil {
		return false, eris.Wrapf(err, "store: mark scraped %s", detail.URL)
	}
	marked, err := markRes.RowsAffected()
	if err != nil {
		return false, eris.Wrap(err, "store: rows affected")
	}
	if marked == 0 {
		// The url row may not exist (e.g. a detail fetched out-of-band);
		// that is still consistent with I1 as long as the detail row
		// itself was inserted or already existed.
		if !isDuplicate {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO job_urls (job_id, platform, input_role, actual_role, url, scraped)
				VALUES (?, ?, ?, ?, ?, 1)
				ON CONFLICT(platform, url) DO UPDATE SET scraped = 1
			`, detail.JobID, string(detail.Platform), detail.ActualRole, detail.ActualRole, detail.URL); err != nil {
				return false, eris.Wrapf(err, "store: backfill url row %s", detail.URL)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return false, eris.Wrap(err, "store: commit mark_scraped")
	}

	return isDuplicate, nil
}

// DeleteURLs removes rows in a single batched statement (§4.1): this is
// the only supported cleanup path, and is dramatically faster than a
// per-row delete loop for expiration waves.
func (s *SQLiteStore) DeleteURLs(ctx context.Context, platform utils.Platform, urls []string) (int, error) {
	if len(urls) == 0 {
		return 0, nil
	}

	placeholders := make([]string, len(urls))
	args := make([]any, 0, len(urls)+1)
	args = append(args, string(platform))
	for i, u := range urls {
		placeholders[i] = "?"
		args = append(args, u)
	}

	query := fmt.Sprintf(
		`DELETE FROM job_urls WHERE platform = ? AND url IN (%s)`,
		strings.Join(placeholders, ","),
	)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, eris.Wrap(err, "store: delete_urls")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "store: rows affected")
	}
	return int(n), nil
}

// CountScrapedByPlatform supports UI-style dashboards; read-only.
func (s *SQLiteStore) CountScrapedByPlatform(ctx context.Context) (map[utils.Platform]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT platform, COUNT(*) FROM jobs GROUP BY platform
	`)
	if err != nil {
		return nil, eris.Wrap(err, "store: count_scraped_by_platform")
	}
	defer rows.Close() //nolint:errcheck

	out := make(map[utils.Platform]int)
	for rows.Next() {
		var platformStr string
		var count int
		if err := rows.Scan(&platformStr, &count); err != nil {
			return nil, eris.Wrap(err, "store: scan count")
		}
		out[utils.Platform(platformStr)] = count
	}
	return out, eris.Wrap(rows.Err(), "store: count_scraped_by_platform iterate")
}

// ExistingURLs supports the harvester's pre-insert dedup pass (§4.2 step 4).
func (s *SQLiteStore) ExistingURLs(ctx context.Context, platform utils.Platform) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT url FROM job_urls WHERE platform = ?`, string(platform))
	if err != nil {
		return nil, eris.Wrap(err, "store: existing_urls")
	}
	defer rows.Close() //nolint:errcheck

	out := make(map[string]struct{})
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, eris.Wrap(err, "store: scan existing url")
		}
		out[u] = struct{}{}
	}
	return out, eris.Wrap(rows.Err(), "store: existing_urls iterate")
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
