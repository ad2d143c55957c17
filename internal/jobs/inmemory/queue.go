// Package inmemory runs report jobs inside the process: a buffered channel
// feeds a fixed pool of workers, and job records live in a map.
package inmemory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dvloznov/finance-copilot/internal/jobs"
	"github.com/google/uuid"
)

var errQueueClosed = errors.New("queue is closed")

// Queue is a channel-backed Publisher and Consumer. It is safe for
// concurrent use.
type Queue struct {
	jobChan   chan *jobs.ReportJob
	closeChan chan struct{}
	wg        sync.WaitGroup
	mu        sync.RWMutex
	closed    bool

	store   jobs.JobStore
	workers int

	// retryBackoff is multiplied by the retry number before a failed job
	// is queued again.
	retryBackoff time.Duration

	pendingMu sync.Mutex
	pending   int
	waiters   []chan struct{}
}

// NewQueue creates a queue holding up to bufferSize waiting jobs and
// running workers consumers once started. store may be nil.
func NewQueue(bufferSize, workers int, store jobs.JobStore) *Queue {
	return &Queue{
		jobChan:      make(chan *jobs.ReportJob, bufferSize),
		closeChan:    make(chan struct{}),
		store:        store,
		workers:      max(workers, 1),
		retryBackoff: time.Second,
	}
}

// PublishReport assigns an id and creation time if missing, records the job
// as pending and queues it. It blocks while the buffer is full.
func (q *Queue) PublishReport(ctx context.Context, job *jobs.ReportJob) error {
	if job.JobID == "" {
		job.JobID = uuid.NewString()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	job.Status = jobs.JobStatusPending

	q.addPending()
	if err := q.enqueue(ctx, job); err != nil {
		q.donePending()
		return fmt.Errorf("PublishReport: %w", err)
	}
	return nil
}

func (q *Queue) isClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *Queue) enqueue(ctx context.Context, job *jobs.ReportJob) error {
	if q.isClosed() {
		return errQueueClosed
	}
	if err := q.save(ctx, job); err != nil {
		return fmt.Errorf("save job: %w", err)
	}

	select {
	case q.jobChan <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.closeChan:
		return errQueueClosed
	}
}

func (q *Queue) save(ctx context.Context, job *jobs.ReportJob) error {
	if q.store == nil {
		return nil
	}
	return q.store.SaveJob(ctx, job)
}

// Start launches the workers. It returns immediately.
func (q *Queue) Start(ctx context.Context, handler jobs.Handler) error {
	if q.isClosed() {
		return errQueueClosed
	}
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, handler)
	}
	return nil
}

func (q *Queue) worker(ctx context.Context, handler jobs.Handler) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closeChan:
			return
		case job := <-q.jobChan:
			if job == nil {
				return
			}
			q.run(ctx, job, handler)
		}
	}
}

// run executes one attempt and either settles the job or schedules a retry.
func (q *Queue) run(ctx context.Context, job *jobs.ReportJob, handler jobs.Handler) {
	job.MarkRunning(time.Now())
	_ = q.save(ctx, job)

	job.MarkDone(time.Now(), handler(ctx, job))
	_ = q.save(ctx, job)

	switch {
	case job.Status.IsFinal():
		q.donePending()
	case job.Status == jobs.JobStatusRetrying:
		q.retryLater(ctx, job)
	}
}

func (q *Queue) retryLater(ctx context.Context, job *jobs.ReportJob) {
	backoff := time.Duration(job.RetryCount) * q.retryBackoff
	time.AfterFunc(backoff, func() {
		job.Status = jobs.JobStatusPending
		job.StartedAt = nil
		job.CompletedAt = nil
		if err := q.enqueue(ctx, job); err != nil {
			job.Status = jobs.JobStatusFailed
			job.Error = err.Error()
			_ = q.save(context.Background(), job)
			q.donePending()
		}
	})
}

// Wait blocks until every published job has reached a final state.
func (q *Queue) Wait(ctx context.Context) error {
	q.pendingMu.Lock()
	if q.pending == 0 {
		q.pendingMu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	q.waiters = append(q.waiters, ch)
	q.pendingMu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) addPending() {
	q.pendingMu.Lock()
	q.pending++
	q.pendingMu.Unlock()
}

func (q *Queue) donePending() {
	q.pendingMu.Lock()
	defer q.pendingMu.Unlock()

	q.pending--
	if q.pending > 0 {
		return
	}
	q.pending = 0
	for _, ch := range q.waiters {
		close(ch)
	}
	q.waiters = nil
}

// Stop closes the queue and waits for the workers to exit. Jobs still in
// the buffer are abandoned.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.closeChan)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the queue without a deadline.
func (q *Queue) Close() error {
	return q.Stop(context.Background())
}

var (
	_ jobs.Publisher = (*Queue)(nil)
	_ jobs.Consumer  = (*Queue)(nil)
)
