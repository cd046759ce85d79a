package backfill

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fortuna/mlbh2h/internal/ingest"
	"github.com/fortuna/mlbh2h/internal/schedule"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Request represents a backfill invocation request.
type Request struct {
	StartDate *time.Time
	EndDate   *time.Time
	Season    bool
	Dates     []string
	DryRun    bool
}

// DeriveType infers the job type based on populated fields.
func (r Request) DeriveType() (JobType, error) {
	if len(r.Dates) > 0 {
		return JobTypeDates, nil
	}
	if r.Season {
		return JobTypeSeason, nil
	}
	if r.StartDate != nil && r.EndDate != nil {
		return JobTypeDateRange, nil
	}
	return "", fmt.Errorf("unable to determine job type from request")
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithObserver forwards every runner callback to r in addition to the store.
func WithObserver(r Reporter) ServiceOption {
	return func(s *Service) { s.observer = r }
}

// WithPollInterval sets how often the worker looks for queued jobs.
func WithPollInterval(d time.Duration) ServiceOption {
	return func(s *Service) { s.pollInterval = d }
}

// Service coordinates job persistence, execution, and status reporting.
type Service struct {
	repo     JobStore
	runner   *Runner
	observer Reporter

	historyLimit int
	pollInterval time.Duration
	wake         chan struct{}
	now          func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	log *logrus.Entry
}

// NewService constructs a Service. Call Start to launch workers.
func NewService(repo JobStore, runner *Runner, log *logrus.Entry, opts ...ServiceOption) *Service {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Service{
		repo:         repo,
		runner:       runner,
		historyLimit: 10,
		pollInterval: 3 * time.Second,
		wake:         make(chan struct{}, 1),
		now:          time.Now,
		ctx:          ctx,
		cancel:       cancel,
		log:          log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the background worker loop.
func (s *Service) Start() {
	if err := s.repo.ResetStuckJobs(s.ctx); err != nil {
		s.log.WithError(err).Warn("failed to reset jobs")
	}

	s.wg.Add(1)
	go s.worker()
}

// Shutdown stops workers and waits for completion.
func (s *Service) Shutdown(ctx context.Context) error {
	s.cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.wg.Wait()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Enqueue creates a new job from the provided request.
func (s *Service) Enqueue(ctx context.Context, req Request) (*Job, error) {
	jobType, err := req.DeriveType()
	if err != nil {
		return nil, err
	}

	job := &Job{
		JobID:         uuid.NewString(),
		JobType:       jobType,
		DryRun:        req.DryRun,
		Status:        JobStatusQueued,
		StatusMessage: sql.NullString{String: "waiting for worker", Valid: true},
	}

	switch jobType {
	case JobTypeDates:
		for _, d := range req.Dates {
			if _, err := schedule.ParseDate(d); err != nil {
				return nil, err
			}
		}
		job.Dates = append(job.Dates, req.Dates...)
	case JobTypeSeason:
		start := truncateDate(s.runner.Calendar().SeasonStart())
		end := truncateDate(s.now()).AddDate(0, 0, -1)
		if req.EndDate != nil {
			end = truncateDate(*req.EndDate)
		}
		job.StartDate = sql.NullTime{Time: start, Valid: true}
		job.EndDate = sql.NullTime{Time: end, Valid: true}
	case JobTypeDateRange:
		start, end := truncateDate(*req.StartDate), truncateDate(*req.EndDate)
		if end.Before(start) {
			return nil, fmt.Errorf("end_date %s is before start_date %s", schedule.FormatDate(end), schedule.FormatDate(start))
		}
		job.StartDate = sql.NullTime{Time: start, Valid: true}
		job.EndDate = sql.NullTime{Time: end, Valid: true}
	}

	spec, err := s.buildSpec(job)
	if err != nil {
		return nil, err
	}
	dates, err := s.runner.Dates(spec)
	if err != nil {
		return nil, err
	}
	job.ProgressTotal = len(dates)

	stored, err := s.repo.CreateJob(ctx, job)
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("%d dates queued", job.ProgressTotal)
	if err := s.repo.AppendEvent(ctx, stored.JobID, "queued", msg, nil, &job.ProgressTotal); err != nil {
		s.log.WithError(err).WithField("job_id", stored.JobID).Warn("failed to record queued event")
	}

	select {
	case s.wake <- struct{}{}:
	default:
	}

	return stored, nil
}

// GetJob returns a single job by id.
func (s *Service) GetJob(ctx context.Context, jobID string) (*Job, error) {
	return s.repo.GetJob(ctx, jobID)
}

// Events returns the event log of a job, oldest first.
func (s *Service) Events(ctx context.Context, jobID string) ([]JobEvent, error) {
	return s.repo.ListEvents(ctx, jobID)
}

// GetStatus returns the running job, if any, and the most recent jobs.
func (s *Service) GetStatus(ctx context.Context) (*StatusSummary, error) {
	active, err := s.repo.GetActiveJob(ctx)
	if err != nil {
		return nil, fmt.Errorf("active job: %w", err)
	}
	history, err := s.repo.ListRecentJobs(ctx, s.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("job history: %w", err)
	}
	return &StatusSummary{ActiveJob: active, History: history}, nil
}

func (s *Service) worker() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for s.ctx.Err() == nil {
		job, err := s.claim()
		switch {
		case err != nil:
			if !s.idle(time.After(time.Second)) {
				return
			}
		case job == nil:
			if !s.idle(ticker.C) {
				return
			}
		default:
			s.executeJob(job)
		}
	}
}

func (s *Service) claim() (*Job, error) {
	job, err := s.repo.MarkNextJobRunning(s.ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		s.log.WithError(err).Error("failed to claim backfill job")
	}
	return job, err
}

// idle waits for timer or a new job. It returns false on shutdown.
func (s *Service) idle(timer <-chan time.Time) bool {
	select {
	case <-s.ctx.Done():
		return false
	case <-timer:
	case <-s.wake:
	}
	return true
}

func (s *Service) executeJob(job *Job) {
	log := s.log.WithFields(logrus.Fields{"job_id": job.JobID, "job_type": job.JobType})

	spec, err := s.buildSpec(job)
	if err != nil {
		log.WithError(err).Error("stored job cannot be run")
		s.finish(job.JobID, JobStatusFailed, "invalid backfill request", err, log)
		return
	}

	reporter := &jobReporter{
		ctx:      s.ctx,
		repo:     s.repo,
		observer: s.observer,
		jobID:    job.JobID,
		total:    job.ProgressTotal,
		log:      log,
	}

	log.WithField("dates", job.ProgressTotal).Info("cache warm-up started")
	err = s.runner.Run(s.ctx, spec, reporter)
	switch {
	case err != nil && s.ctx.Err() != nil:
		// left running so ResetStuckJobs requeues it on the next start
		log.Warn("cache warm-up interrupted by shutdown")
	case err != nil:
		log.WithError(err).Error("cache warm-up failed")
		s.finish(job.JobID, JobStatusFailed, "stopped at first failing date", err, log)
	default:
		log.Info("cache warm-up completed")
		s.finish(job.JobID, JobStatusCompleted, fmt.Sprintf("%d dates cached", job.ProgressTotal), nil, log)
	}
}

func (s *Service) finish(jobID string, status JobStatus, message string, cause error, log *logrus.Entry) {
	if err := s.repo.UpdateStatus(s.ctx, jobID, status, message, cause); err != nil {
		log.WithError(err).Error("failed to store final job status")
	}
}

// buildSpec turns a stored job back into runner input.
func (s *Service) buildSpec(job *Job) (JobSpec, error) {
	spec := JobSpec{Type: job.JobType, DryRun: job.DryRun}

	switch job.JobType {
	case JobTypeDates:
		if len(job.Dates) == 0 {
			return spec, errors.New("dates job has no dates")
		}
		spec.Dates = append([]string(nil), job.Dates...)
	case JobTypeSeason, JobTypeDateRange:
		if !job.StartDate.Valid || !job.EndDate.Valid {
			return spec, fmt.Errorf("%s job has no date bounds", job.JobType)
		}
		spec.Start, spec.End = job.StartDate.Time, job.EndDate.Time
	default:
		return spec, fmt.Errorf("unknown job type %q", job.JobType)
	}
	return spec, nil
}

// jobReporter records runner callbacks on the job and forwards them to the
// optional observer.
type jobReporter struct {
	ctx      context.Context
	repo     JobStore
	observer Reporter
	jobID    string
	total    int
	log      *logrus.Entry
}

func (r *jobReporter) OnJobStart(spec JobSpec) {
	r.update(0, r.total, "resolving dates")
	r.notify(func(o Reporter) { o.OnJobStart(spec) })
}

func (r *jobReporter) OnDateStart(date time.Time, index int, total int) {
	total = valueOr(total, r.total)
	r.update(index, total, fmt.Sprintf("loading %s (%d/%d)", schedule.FormatDate(date), index+1, total))
	r.notify(func(o Reporter) { o.OnDateStart(date, index, total) })
}

func (r *jobReporter) OnDateLoaded(event ingest.Event) {
	current, total := event.Index+1, event.Total
	r.event("date", fmt.Sprintf("%s: %d players from %s", event.Date, event.Players, event.Source), &current, &total)
	r.notify(func(o Reporter) { o.OnDateLoaded(event) })
}

func (r *jobReporter) OnProgress(message string, current int, total int) {
	r.update(current, valueOr(total, r.total), message)
	r.notify(func(o Reporter) { o.OnProgress(message, current, total) })
}

func (r *jobReporter) OnJobComplete() {
	r.update(r.total, r.total, "all dates loaded")
	r.notify(func(o Reporter) { o.OnJobComplete() })
}

func (r *jobReporter) OnJobError(err error) {
	r.event("error", err.Error(), nil, nil)
	r.notify(func(o Reporter) { o.OnJobError(err) })
}

func (r *jobReporter) notify(fn func(Reporter)) {
	if r.observer != nil {
		fn(r.observer)
	}
}

func (r *jobReporter) event(kind, message string, current, total *int) {
	if err := r.repo.AppendEvent(r.ctx, r.jobID, kind, message, current, total); err != nil {
		r.log.WithError(err).WithField("event", kind).Debug("failed to record job event")
	}
}

func (r *jobReporter) update(current, total int, message string) {
	if err := r.repo.UpdateProgress(r.ctx, r.jobID, current, total, message); err != nil {
		r.log.WithError(err).Debug("failed to update job progress")
	}
}

func valueOr(val, fallback int) int {
	if val > 0 {
		return val
	}
	return fallback
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
