package backfill

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fortuna/mlbh2h/internal/store"
)

// ErrJobNotFound is returned for an unknown job id.
var ErrJobNotFound = errors.New("backfill job not found")

// Status messages written by both job stores.
const (
	msgRequeued = "requeued after restart"
	msgClaimed  = "warming stats cache"
)

// JobStore persists warm-up jobs and their event log.
type JobStore interface {
	CreateJob(ctx context.Context, job *Job) (*Job, error)
	GetJob(ctx context.Context, jobID string) (*Job, error)
	UpdateStatus(ctx context.Context, jobID string, status JobStatus, message string, lastErr error) error
	UpdateProgress(ctx context.Context, jobID string, current, total int, message string) error
	AppendEvent(ctx context.Context, jobID string, eventType, message string, current, total *int) error
	ListEvents(ctx context.Context, jobID string) ([]JobEvent, error)
	ResetStuckJobs(ctx context.Context) error
	MarkNextJobRunning(ctx context.Context) (*Job, error)
	GetActiveJob(ctx context.Context) (*Job, error)
	ListRecentJobs(ctx context.Context, limit int) ([]*Job, error)
}

const selectJob = `SELECT job_id, job_type, start_date, end_date, dates, dry_run, status,
	status_message, progress_current, progress_total, last_error,
	created_at, updated_at, started_at, completed_at
	FROM backfill_jobs`

const (
	insertJobSQL = `INSERT INTO backfill_jobs
	(job_id, job_type, start_date, end_date, dates, dry_run, status, status_message, progress_total)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	// a terminal status stamps completed_at exactly once
	updateStatusSQL = `UPDATE backfill_jobs
	SET status = $2, status_message = $3, last_error = $4, updated_at = NOW(),
		completed_at = CASE WHEN $5::boolean THEN COALESCE(completed_at, NOW()) ELSE completed_at END
	WHERE job_id = $1`

	updateProgressSQL = `UPDATE backfill_jobs
	SET progress_current = $2, progress_total = $3, status_message = $4, updated_at = NOW()
	WHERE job_id = $1`

	insertEventSQL = `INSERT INTO backfill_job_events
	(job_id, event_type, message, progress_current, progress_total)
	VALUES ($1, $2, $3, $4, $5)`

	listEventsSQL = `SELECT job_id, event_type, message, progress_current, progress_total, created_at
	FROM backfill_job_events WHERE job_id = $1 ORDER BY event_id`

	requeueSQL = `UPDATE backfill_jobs SET status = $1, status_message = $2, updated_at = NOW()
	WHERE status = $3`

	// SKIP LOCKED lets several servers share one queue
	claimSQL = `UPDATE backfill_jobs
	SET status = $1, status_message = $2, started_at = COALESCE(started_at, NOW()), updated_at = NOW()
	WHERE job_id = (
		SELECT job_id FROM backfill_jobs WHERE status = $3
		ORDER BY created_at LIMIT 1 FOR UPDATE SKIP LOCKED
	)
	RETURNING job_id`
)

// Repository stores jobs in PostgreSQL, next to the stats archive.
type Repository struct {
	db *store.Database
}

// NewRepository constructs a Repository.
func NewRepository(db *store.Database) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateJob(ctx context.Context, job *Job) (*Job, error) {
	_, err := r.db.DB().ExecContext(ctx, insertJobSQL,
		job.JobID, job.JobType, job.StartDate, job.EndDate, job.Dates, job.DryRun,
		job.Status, job.StatusMessage, job.ProgressTotal)
	if err != nil {
		return nil, fmt.Errorf("insert job %s: %w", job.JobID, err)
	}
	return r.GetJob(ctx, job.JobID)
}

func (r *Repository) GetJob(ctx context.Context, jobID string) (*Job, error) {
	job, err := r.queryJob(ctx, selectJob+` WHERE job_id = $1`, jobID)
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", jobID, err)
	}
	if job == nil {
		return nil, ErrJobNotFound
	}
	return job, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, jobID string, status JobStatus, message string, lastErr error) error {
	var errText sql.NullString
	if lastErr != nil {
		errText = sql.NullString{String: lastErr.Error(), Valid: true}
	}
	return r.exec(ctx, "update job status", updateStatusSQL,
		jobID, string(status), message, errText, status.Finished())
}

func (r *Repository) UpdateProgress(ctx context.Context, jobID string, current, total int, message string) error {
	return r.exec(ctx, "update job progress", updateProgressSQL, jobID, current, total, message)
}

func (r *Repository) AppendEvent(ctx context.Context, jobID string, eventType, message string, current, total *int) error {
	return r.exec(ctx, "insert job event", insertEventSQL,
		jobID, eventType, message, nullInt(current), nullInt(total))
}

// ListEvents returns a job's event log, oldest first.
func (r *Repository) ListEvents(ctx context.Context, jobID string) ([]JobEvent, error) {
	if _, err := r.GetJob(ctx, jobID); err != nil {
		return nil, err
	}

	rows, err := r.db.DB().QueryContext(ctx, listEventsSQL, jobID)
	if err != nil {
		return nil, fmt.Errorf("list job events: %w", err)
	}
	defer rows.Close()

	var events []JobEvent
	for rows.Next() {
		var (
			e              JobEvent
			current, total sql.NullInt64
		)
		if err := rows.Scan(&e.JobID, &e.EventType, &e.Message, &current, &total, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan job event: %w", err)
		}
		e.ProgressCurrent = intPtr(current)
		e.ProgressTotal = intPtr(total)
		events = append(events, e)
	}
	return events, rows.Err()
}

// ResetStuckJobs requeues jobs a previous process left running.
func (r *Repository) ResetStuckJobs(ctx context.Context) error {
	return r.exec(ctx, "requeue running jobs", requeueSQL,
		string(JobStatusQueued), msgRequeued, string(JobStatusRunning))
}

// MarkNextJobRunning claims the oldest queued job, or returns nil when the
// queue is empty.
func (r *Repository) MarkNextJobRunning(ctx context.Context) (*Job, error) {
	var jobID string
	err := r.db.DB().QueryRowContext(ctx, claimSQL,
		string(JobStatusRunning), msgClaimed, string(JobStatusQueued)).Scan(&jobID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("claim next job: %w", err)
	}
	return r.GetJob(ctx, jobID)
}

func (r *Repository) GetActiveJob(ctx context.Context) (*Job, error) {
	job, err := r.queryJob(ctx, selectJob+` WHERE status = $1 ORDER BY started_at DESC LIMIT 1`,
		string(JobStatusRunning))
	if err != nil {
		return nil, fmt.Errorf("get active job: %w", err)
	}
	return job, nil
}

func (r *Repository) ListRecentJobs(ctx context.Context, limit int) ([]*Job, error) {
	rows, err := r.db.DB().QueryContext(ctx, selectJob+` ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (r *Repository) exec(ctx context.Context, op, query string, args ...interface{}) error {
	if _, err := r.db.DB().ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// queryJob returns nil, nil when no row matches.
func (r *Repository) queryJob(ctx context.Context, query string, args ...interface{}) (*Job, error) {
	job, err := scanJob(r.db.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return job, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (*Job, error) {
	var job Job
	if err := row.Scan(
		&job.JobID, &job.JobType, &job.StartDate, &job.EndDate, &job.Dates, &job.DryRun, &job.Status,
		&job.StatusMessage, &job.ProgressCurrent, &job.ProgressTotal, &job.LastError,
		&job.CreatedAt, &job.UpdatedAt, &job.StartedAt, &job.CompletedAt,
	); err != nil {
		return nil, err
	}
	return &job, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
