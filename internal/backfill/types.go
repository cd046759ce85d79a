package backfill

import (
	"database/sql"
	"time"

	"github.com/fortuna/mlbh2h/internal/ingest"
	"github.com/lib/pq"
)

// JobType enumerates the supported backfill job variants.
type JobType string

const (
	JobTypeSeason    JobType = "season"
	JobTypeDateRange JobType = "date_range"
	JobTypeDates     JobType = "dates"
)

// JobStatus represents the lifecycle state for a job.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// Finished reports whether the status is terminal.
func (s JobStatus) Finished() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

// Job models the stored representation of a backfill job.
type Job struct {
	JobID           string
	JobType         JobType
	StartDate       sql.NullTime
	EndDate         sql.NullTime
	Dates           pq.StringArray
	DryRun          bool
	Status          JobStatus
	StatusMessage   sql.NullString
	ProgressCurrent int
	ProgressTotal   int
	LastError       sql.NullString
	CreatedAt       time.Time
	UpdatedAt       time.Time
	StartedAt       sql.NullTime
	CompletedAt     sql.NullTime
}

// Copy returns a copy to prevent external mutation.
func (j *Job) Copy() *Job {
	if j == nil {
		return nil
	}
	cpy := *j
	cpy.Dates = append(pq.StringArray(nil), j.Dates...)
	return &cpy
}

// JobEvent is one entry of a job's event log.
type JobEvent struct {
	JobID           string    `json:"job_id"`
	EventType       string    `json:"event_type"`
	Message         string    `json:"message"`
	ProgressCurrent *int      `json:"progress_current,omitempty"`
	ProgressTotal   *int      `json:"progress_total,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// JobSpec describes the work to be performed by the runner.
type JobSpec struct {
	Type   JobType
	Start  time.Time
	End    time.Time
	Dates  []string
	DryRun bool
}

// Reporter receives lifecycle callbacks from the runner.
type Reporter interface {
	OnJobStart(spec JobSpec)
	OnDateStart(date time.Time, index int, total int)
	OnDateLoaded(event ingest.Event)
	OnProgress(message string, current int, total int)
	OnJobComplete()
	OnJobError(err error)
}

// StatusSummary is returned to API callers.
type StatusSummary struct {
	ActiveJob *Job   `json:"active_job,omitempty"`
	History   []*Job `json:"recent_jobs,omitempty"`
}
