// Package jobs describes asynchronous report generation: the job record, its
// status lifecycle and the queue contracts the dispatcher publishes to.
package jobs

import (
	"context"
	"time"
)

// JobStatus is where a report job is in its lifecycle:
// pending → running → completed | failed, with retrying in between when
// retries are allowed.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusRetrying  JobStatus = "retrying"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// IsFinal reports whether no further transitions will happen.
func (s JobStatus) IsFinal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// ReportJob is a request to render one report and store it.
type ReportJob struct {
	JobID string `json:"job_id"`

	// ReportType is the free-text type the user asked for, e.g. "Expense".
	ReportType string `json:"report_type"`

	// Location is the stable path or gs:// URI of the finished report.
	Location string `json:"location,omitempty"`

	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`

	// RetryCount is how many times the job was re-queued after failing.
	// MaxRetries of zero means a single attempt.
	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`
}

// Clone returns a copy that shares no pointers with j.
func (j *ReportJob) Clone() *ReportJob {
	c := *j
	if j.StartedAt != nil {
		t := *j.StartedAt
		c.StartedAt = &t
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

// Attempt is the 1-based number of the current or last run.
func (j *ReportJob) Attempt() int {
	return j.RetryCount + 1
}

// LastAttempt reports whether a failure of the current run is final.
func (j *ReportJob) LastAttempt() bool {
	return j.RetryCount >= j.MaxRetries
}

// MarkRunning records the start of an attempt.
func (j *ReportJob) MarkRunning(now time.Time) {
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.CompletedAt = nil
}

// MarkDone records the outcome of an attempt. A failure that still has
// retries left moves the job to retrying and bumps RetryCount.
func (j *ReportJob) MarkDone(now time.Time, err error) {
	j.CompletedAt = &now
	switch {
	case err == nil:
		j.Status = JobStatusCompleted
		j.Error = ""
	case j.LastAttempt():
		j.Status = JobStatusFailed
		j.Error = err.Error()
	default:
		j.Status = JobStatusRetrying
		j.Error = err.Error()
		j.RetryCount++
	}
}

// Handler generates the report for one job. A returned error fails the
// attempt.
type Handler func(ctx context.Context, job *ReportJob) error

// Publisher accepts report jobs for asynchronous processing.
type Publisher interface {
	PublishReport(ctx context.Context, job *ReportJob) error
	Close() error
}

// Consumer runs a Handler for every published job.
type Consumer interface {
	Start(ctx context.Context, handler Handler) error

	// Stop stops consuming and waits for in-flight jobs.
	Stop(ctx context.Context) error
}

// JobStore keeps job records for status queries.
type JobStore interface {
	SaveJob(ctx context.Context, job *ReportJob) error
	GetJob(ctx context.Context, jobID string) (*ReportJob, error)

	// ListJobs returns matching jobs, newest first.
	ListJobs(ctx context.Context, filter JobFilter) ([]*ReportJob, error)
}

// JobFilter narrows ListJobs. Zero fields match everything.
type JobFilter struct {
	ReportType string
	Status     JobStatus
	Limit      int
	Offset     int
}

// Matches reports whether job passes the type and status filters.
func (f JobFilter) Matches(job *ReportJob) bool {
	if f.ReportType != "" && job.ReportType != f.ReportType {
		return false
	}
	return f.Status == "" || job.Status == f.Status
}

// Page applies Offset and Limit to an ordered result.
func (f JobFilter) Page(list []*ReportJob) []*ReportJob {
	if f.Offset > 0 {
		if f.Offset >= len(list) {
			return []*ReportJob{}
		}
		list = list[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(list) {
		list = list[:f.Limit]
	}
	return list
}
