package backfill

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryRepository keeps jobs in process memory. It backs the service when
// no database is configured.
type MemoryRepository struct {
	mu     sync.Mutex
	jobs   map[string]*Job
	order  []string
	events []JobEvent
	now    func() time.Time
}

// NewMemoryRepository creates an empty in-memory job store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		jobs: make(map[string]*Job),
		now:  time.Now,
	}
}

func (m *MemoryRepository) CreateJob(_ context.Context, job *Job) (*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.jobs[job.JobID]; ok {
		return nil, fmt.Errorf("job %s already exists", job.JobID)
	}

	stored := job.Copy()
	now := m.now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	m.jobs[stored.JobID] = stored
	m.order = append(m.order, stored.JobID)
	return stored.Copy(), nil
}

func (m *MemoryRepository) GetJob(_ context.Context, jobID string) (*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	return job.Copy(), nil
}

func (m *MemoryRepository) UpdateStatus(_ context.Context, jobID string, status JobStatus, message string, lastErr error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return ErrJobNotFound
	}
	now := m.now()
	job.Status = status
	job.StatusMessage = sql.NullString{String: message, Valid: true}
	job.LastError = sql.NullString{}
	if lastErr != nil {
		job.LastError = sql.NullString{String: lastErr.Error(), Valid: true}
	}
	job.UpdatedAt = now
	if status.Finished() {
		job.CompletedAt = sql.NullTime{Time: now, Valid: true}
	}
	return nil
}

func (m *MemoryRepository) UpdateProgress(_ context.Context, jobID string, current, total int, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return ErrJobNotFound
	}
	job.ProgressCurrent = current
	job.ProgressTotal = total
	job.StatusMessage = sql.NullString{String: message, Valid: true}
	job.UpdatedAt = m.now()
	return nil
}

func (m *MemoryRepository) AppendEvent(_ context.Context, jobID string, eventType, message string, current, total *int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.jobs[jobID]; !ok {
		return ErrJobNotFound
	}
	m.events = append(m.events, JobEvent{
		JobID:           jobID,
		EventType:       eventType,
		Message:         message,
		ProgressCurrent: current,
		ProgressTotal:   total,
		CreatedAt:       m.now(),
	})
	return nil
}

func (m *MemoryRepository) ResetStuckJobs(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, job := range m.jobs {
		if job.Status == JobStatusRunning {
			job.Status = JobStatusQueued
			job.StatusMessage = sql.NullString{String: msgRequeued, Valid: true}
			job.UpdatedAt = m.now()
		}
	}
	return nil
}

func (m *MemoryRepository) MarkNextJobRunning(_ context.Context) (*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range m.order {
		job := m.jobs[id]
		if job.Status != JobStatusQueued {
			continue
		}
		now := m.now()
		job.Status = JobStatusRunning
		job.StatusMessage = sql.NullString{String: msgClaimed, Valid: true}
		if !job.StartedAt.Valid {
			job.StartedAt = sql.NullTime{Time: now, Valid: true}
		}
		job.UpdatedAt = now
		return job.Copy(), nil
	}
	return nil, nil
}

func (m *MemoryRepository) GetActiveJob(_ context.Context) (*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(m.order) - 1; i >= 0; i-- {
		if job := m.jobs[m.order[i]]; job.Status == JobStatusRunning {
			return job.Copy(), nil
		}
	}
	return nil, nil
}

func (m *MemoryRepository) ListRecentJobs(_ context.Context, limit int) ([]*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	jobs := make([]*Job, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0 && len(jobs) < limit; i-- {
		jobs = append(jobs, m.jobs[m.order[i]].Copy())
	}
	return jobs, nil
}

// ListEvents returns the event log of a job, oldest first.
func (m *MemoryRepository) ListEvents(_ context.Context, jobID string) ([]JobEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.jobs[jobID]; !ok {
		return nil, ErrJobNotFound
	}
	var out []JobEvent
	for _, e := range m.events {
		if e.JobID == jobID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
