package inmemory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/dvloznov/finance-copilot/internal/jobs"
)

// ErrJobNotFound is returned for unknown job ids.
var ErrJobNotFound = errors.New("job not found")

// Store keeps report job records in memory. Records are lost on restart;
// the generated report files are not.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*jobs.ReportJob
}

// NewStore creates an empty job store.
func NewStore() *Store {
	return &Store{jobs: make(map[string]*jobs.ReportJob)}
}

// SaveJob stores a snapshot of job; later changes by the caller are not seen.
func (s *Store) SaveJob(ctx context.Context, job *jobs.ReportJob) error {
	if job.JobID == "" {
		return errors.New("SaveJob: job id is required")
	}

	s.mu.Lock()
	s.jobs[job.JobID] = job.Clone()
	s.mu.Unlock()
	return nil
}

// GetJob returns a copy of the job record.
func (s *Store) GetJob(ctx context.Context, jobID string) (*jobs.ReportJob, error) {
	s.mu.RLock()
	job, ok := s.jobs[jobID]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("GetJob: %s: %w", jobID, ErrJobNotFound)
	}
	return job.Clone(), nil
}

// ListJobs returns copies of the matching jobs, newest first, ties broken by
// id so pages are stable.
func (s *Store) ListJobs(ctx context.Context, filter jobs.JobFilter) ([]*jobs.ReportJob, error) {
	s.mu.RLock()
	result := make([]*jobs.ReportJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		if filter.Matches(job) {
			result = append(result, job.Clone())
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(result, func(a, b *jobs.ReportJob) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.JobID, b.JobID)
	})
	return filter.Page(result), nil
}

var _ jobs.JobStore = (*Store)(nil)
