package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/JakeFAU/contact-finder/internal/contact"
)

// JobStore keeps job progress in memory so it can be polled while the worker
// mutates it.
type JobStore struct {
	mu     sync.RWMutex
	jobs   map[string]contact.JobState
	latest string
}

// NewJobStore constructs a JobStore.
func NewJobStore() *JobStore {
	return &JobStore{
		jobs: make(map[string]contact.JobState),
	}
}

// CreateJob registers a job and makes it the latest one. Re-creating an
// existing id replaces its state.
func (s *JobStore) CreateJob(_ context.Context, job contact.JobState) error {
	if job.ID == "" {
		return fmt.Errorf("job id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job.Clone()
	s.latest = job.ID
	return nil
}

// UpdateJob applies mutate to the stored state under the write lock.
func (s *JobStore) UpdateJob(_ context.Context, jobID string, mutate func(*contact.JobState)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return fmt.Errorf("job %s: %w", jobID, contact.ErrNotFound)
	}
	before := job.Status
	mutate(&job)
	job.ID = jobID
	now := time.Now().UTC()
	if job.Status == contact.JobStatusRunning && before != contact.JobStatusRunning && job.Started == nil {
		job.Started = pointerTime(now)
	}
	if isTerminal(job.Status) && job.Finished == nil {
		job.Finished = pointerTime(now)
	}
	s.jobs[jobID] = job.Clone()
	return nil
}

// GetJob fetches a job by ID.
func (s *JobStore) GetJob(_ context.Context, jobID string) (contact.JobState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return contact.JobState{}, fmt.Errorf("job %s: %w", jobID, contact.ErrNotFound)
	}
	return job.Clone(), nil
}

// LatestJob returns the most recently created job.
func (s *JobStore) LatestJob(ctx context.Context) (contact.JobState, error) {
	s.mu.RLock()
	latest := s.latest
	s.mu.RUnlock()
	if latest == "" {
		return contact.JobState{}, fmt.Errorf("no jobs: %w", contact.ErrNotFound)
	}
	return s.GetJob(ctx, latest)
}

func pointerTime(t time.Time) *time.Time {
	ts := t
	return &ts
}

func isTerminal(status contact.JobStatus) bool {
	switch status {
	case contact.JobStatusSucceeded, contact.JobStatusFailed:
		return true
	default:
		return false
	}
}
