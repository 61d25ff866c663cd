// Package store keeps per-session application state in an in-memory SQLite
// database: workflow status per posting and the set of postings already
// reported by watch mode.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/ratelimit"
)

// MemoryDSN is an in-memory database that lives as long as the process.
const MemoryDSN = "file:jobscout?mode=memory&cache=shared"

// Limiter consumes one point of an operation budget.
type Limiter interface {
	Check(operation string) error
}

// SQLiteStore is safe for concurrent use; all access goes through a single
// connection.
type SQLiteStore struct {
	db      *sql.DB
	limiter Limiter
	now     func() time.Time
	logger  *slog.Logger
}

// NewSQLiteStore opens dsn and ensures the schema exists. A nil limiter
// disables budgets for tailoring and cover letters.
func NewSQLiteStore(dsn string, limiter Limiter, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// A memory database disappears with its last connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS applications (
			job_id     TEXT PRIMARY KEY,
			status     TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS seen_jobs (
			job_id     TEXT PRIMARY KEY,
			first_seen INTEGER NOT NULL
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	return &SQLiteStore{db: db, limiter: limiter, now: time.Now, logger: logger}, nil
}

// Status returns the workflow status of jobID. Untracked postings are
// not_applied.
func (s *SQLiteStore) Status(ctx context.Context, jobID string) (model.ApplicationStatus, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT status FROM applications WHERE job_id = ?", jobID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return model.StatusNotApplied, nil
	}
	if err != nil {
		return "", fmt.Errorf("reading status for %s: %w", jobID, err)
	}
	return model.ParseStatus(raw)
}

// SetStatus moves jobID to status if the transition is allowed.
func (s *SQLiteStore) SetStatus(ctx context.Context, jobID string, status model.ApplicationStatus) (model.ApplicationStatus, error) {
	if strings.TrimSpace(jobID) == "" {
		return "", &model.ValidationError{Field: "job_id", Message: "must not be empty"}
	}
	from, err := s.Status(ctx, jobID)
	if err != nil {
		return "", err
	}
	to, err := model.Transition(from, status)
	if err != nil {
		return from, err
	}
	if err := s.write(ctx, jobID, to); err != nil {
		return from, err
	}
	return to, nil
}

func (s *SQLiteStore) write(ctx context.Context, jobID string, status model.ApplicationStatus) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO applications (job_id, status, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(job_id) DO UPDATE SET status = excluded.status, updated_at = excluded.updated_at`,
		jobID, string(status), s.now().UnixNano())
	if err != nil {
		return fmt.Errorf("writing status for %s: %w", jobID, err)
	}
	return nil
}

// RunTransform charges operation's budget, marks jobID as generating, runs fn
// and then records success, or restores the previous status if fn fails.
func (s *SQLiteStore) RunTransform(ctx context.Context, operation, jobID string, success model.ApplicationStatus, fn func(context.Context) error) error {
	if s.limiter != nil {
		if err := s.limiter.Check(operation); err != nil {
			return err
		}
	}

	prev, err := s.Status(ctx, jobID)
	if err != nil {
		return err
	}
	if !model.CanTransition(prev, model.StatusGenerating) || !model.CanTransition(model.StatusGenerating, success) {
		_, err := model.Transition(prev, success)
		return err
	}
	if err := s.write(ctx, jobID, model.StatusGenerating); err != nil {
		return err
	}

	if fnErr := fn(ctx); fnErr != nil {
		// The restore must run even when ctx was the reason fn failed.
		if err := s.write(context.WithoutCancel(ctx), jobID, prev); err != nil {
			s.logger.Error("restoring status failed", "job_id", jobID, "status", prev, "error", err)
		}
		return fmt.Errorf("%s for %s: %w", operation, jobID, fnErr)
	}

	s.logger.Info("transform complete", "operation", operation, "job_id", jobID, "status", success)
	return s.write(ctx, jobID, success)
}

// Tailor runs a CV tailoring step for jobID, ending in tailored.
func (s *SQLiteStore) Tailor(ctx context.Context, jobID string, fn func(context.Context) error) error {
	return s.RunTransform(ctx, ratelimit.OpCVTailoring, jobID, model.StatusTailored, fn)
}

// GenerateCoverLetter runs a cover letter step for jobID. The posting keeps
// its previous status on success unless it was not yet tracked, in which case
// it becomes tailored.
func (s *SQLiteStore) GenerateCoverLetter(ctx context.Context, jobID string, fn func(context.Context) error) error {
	prev, err := s.Status(ctx, jobID)
	if err != nil {
		return err
	}
	success := prev
	if prev == model.StatusNotApplied {
		success = model.StatusTailored
	}
	return s.RunTransform(ctx, ratelimit.OpCoverLetter, jobID, success, fn)
}

// HasSeen returns true if the given job ID has already been recorded.
func (s *SQLiteStore) HasSeen(jobID string) (bool, error) {
	var exists int
	err := s.db.QueryRow("SELECT 1 FROM seen_jobs WHERE job_id = ?", jobID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking seen status for %s: %w", jobID, err)
	}
	return true, nil
}

// MarkSeen records a job ID as seen. If it already exists the call is a no-op.
func (s *SQLiteStore) MarkSeen(jobID string) error {
	_, err := s.db.Exec("INSERT OR IGNORE INTO seen_jobs (job_id, first_seen) VALUES (?, ?)", jobID, s.now().UnixNano())
	if err != nil {
		return fmt.Errorf("marking job %s as seen: %w", jobID, err)
	}
	return nil
}

// Cleanup forgets seen postings first reported more than olderThan ago.
func (s *SQLiteStore) Cleanup(olderThan time.Duration) error {
	cutoff := s.now().Add(-olderThan).UnixNano()
	_, err := s.db.Exec("DELETE FROM seen_jobs WHERE first_seen < ?", cutoff)
	if err != nil {
		return fmt.Errorf("cleaning up seen jobs older than %v: %w", olderThan, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
