// Package async runs extractions on a bounded worker pool.
package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/payslip-extractor/constants"
	"github.com/joseph-ayodele/payslip-extractor/internal/common"
)

var ErrQueueClosed = errors.New("queue is shutting down")

type ProcessorQueue struct {
	proc    Extractor
	logger  *slog.Logger
	workers int
	timeout time.Duration
	handler ResultHandler

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	// closeMu guards closed and sends on ch; statusMu guards statuses and finished.
	closeMu  sync.RWMutex
	closed   bool
	statusMu sync.Mutex
	statuses map[uuid.UUID]constants.JobStatus
	finished []uuid.UUID
	retain   int
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// WithStatusRetention bounds how many finished jobs keep a queryable status.
// Queued and running jobs are always tracked.
func WithStatusRetention(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.retain = n
		}
	}
}

// WithResultHandler registers a callback run on the worker goroutine after
// each job. It must be safe for concurrent use.
func WithResultHandler(h ResultHandler) Option {
	return func(q *ProcessorQueue) {
		q.handler = h
	}
}

func NewProcessorQueue(proc Extractor, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		proc:     proc,
		logger:   logger,
		workers:  4,
		timeout:  2 * time.Minute,
		ch:       make(chan Job, 256),
		statuses: make(map[uuid.UUID]constants.JobStatus),
		retain:   1024,
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("queue.worker.started", "worker_id", workerID)
				for job := range q.ch {
					q.run(workerID, job)
				}
				q.logger.Debug("queue.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ProcessorQueue) run(workerID int, job Job) {
	q.setStatus(job.ID, constants.JobStatusRunning)
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	res := q.proc.Extract(ctx, job.Input, job.Country, job.Fallback)
	cancel()

	status := constants.JobStatusSucceeded
	if res == nil || !res.Success {
		status = constants.JobStatusFailed
		errMsg := "no result"
		level := slog.LevelError
		if res != nil {
			errMsg = res.Error
			// rejected input is the caller's problem, not the worker's
			if common.IsFatal(res.Err) && !errors.Is(res.Err, common.ErrInternal) {
				level = slog.LevelWarn
			}
		}
		q.logger.Log(context.Background(), level, "queue.job.failed", "worker_id", workerID, "job_id", job.ID, "source", job.Source, "error", errMsg)
	} else {
		if res.FallbackErr != nil {
			q.logger.Warn("queue.job.degraded", "worker_id", workerID, "job_id", job.ID, "source", job.Source, "error", res.FallbackErr)
		}
		q.logger.Info("queue.job.ok", "worker_id", workerID, "job_id", job.ID, "source", job.Source,
			"method", res.Data.ExtractionMethod, "elapsed_ms", time.Since(start).Milliseconds())
	}
	q.finish(job.ID, status)

	if q.handler != nil {
		q.handler(JobResult{Job: job, Status: status, Result: res, Elapsed: time.Since(start)})
	}
}

// Enqueue assigns an ID when the job has none and blocks while the buffer is
// full, until ctx is done.
func (q *ProcessorQueue) Enqueue(ctx context.Context, job Job) (uuid.UUID, error) {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}

	q.closeMu.RLock()
	defer q.closeMu.RUnlock()
	if q.closed {
		q.logger.Warn("queue.enqueue.closed", "source", job.Source)
		return uuid.Nil, ErrQueueClosed
	}
	q.setStatus(job.ID, constants.JobStatusQueued)

	select {
	case q.ch <- job:
		q.logger.Debug("queue.job.queued", "job_id", job.ID, "source", job.Source)
		return job.ID, nil
	default:
	}
	q.logger.Warn("queue.full", "job_id", job.ID, "source", job.Source)
	select {
	case q.ch <- job:
		return job.ID, nil
	case <-ctx.Done():
		q.statusMu.Lock()
		delete(q.statuses, job.ID)
		q.statusMu.Unlock()
		return uuid.Nil, ctx.Err()
	}
}

// Status reports the last known status of a job.
func (q *ProcessorQueue) Status(id uuid.UUID) (constants.JobStatus, bool) {
	q.statusMu.Lock()
	defer q.statusMu.Unlock()
	s, ok := q.statuses[id]
	return s, ok
}

func (q *ProcessorQueue) setStatus(id uuid.UUID, s constants.JobStatus) {
	q.statusMu.Lock()
	q.statuses[id] = s
	q.statusMu.Unlock()
}

// finish records a terminal status and evicts the oldest finished entries
// beyond the retention limit. An evicted ID that was re-enqueued meanwhile
// keeps its live status.
func (q *ProcessorQueue) finish(id uuid.UUID, s constants.JobStatus) {
	q.statusMu.Lock()
	defer q.statusMu.Unlock()
	q.statuses[id] = s
	q.finished = append(q.finished, id)
	for len(q.finished) > q.retain {
		old := q.finished[0]
		q.finished = q.finished[1:]
		if st := q.statuses[old]; st == constants.JobStatusSucceeded || st == constants.JobStatusFailed {
			delete(q.statuses, old)
		}
	}
}

// Shutdown stops accepting jobs and waits for queued ones to drain.
func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.closeMu.Lock()
	if q.closed {
		q.closeMu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.closeMu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("queue.shutdown.interrupted")
	case <-done:
		q.logger.Info("queue.shutdown.ok")
	}
}

var _ Queue = (*ProcessorQueue)(nil)
