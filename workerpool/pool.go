// Package workerpool provides the process-wide bounded runner for best-effort
// background jobs, primarily the trust-state cache backfill. Admission is a
// bounded queue with backpressure: a submitter waits for a slot rather than
// spawning unbounded goroutines, and shutdown drains deterministically.
package workerpool

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Job is one unit of background work. The context it receives is the pool's
// own lifetime, not the submitting request's: a finished request must not
// cancel its backfill.
type Job func(ctx context.Context)

// ErrClosed is returned by Submit after Shutdown has begun
var ErrClosed = errors.New("workerpool: closed")

// Pool runs jobs on a fixed number of workers over a bounded queue
type Pool struct {
	logger *zap.Logger
	jobs   chan Job
	wg     sync.WaitGroup

	mu      sync.RWMutex
	closed  bool
	baseCtx context.Context
	cancel  context.CancelFunc
}

// New starts a pool with the given worker count and queue capacity
func New(workers, queueSize int, logger *zap.Logger) *Pool {
	baseCtx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		logger:  logger,
		jobs:    make(chan Job, queueSize),
		baseCtx: baseCtx,
		cancel:  cancel,
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					p.logger.Error("background job panicked", zap.Any("panic", r))
				}
			}()
			job(p.baseCtx)
		}()
	}
}

// Submit enqueues a job, blocking while the queue is full. It returns
// ctx.Err() if the submitter gives up first, or ErrClosed once the pool is
// shutting down.
func (p *Pool) Submit(ctx context.Context, job Job) error {
	// the read lock spans the send so Shutdown cannot close the channel
	// under a submitter; workers keep draining, so a full-queue send still
	// completes
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	select {
	case p.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops admission and waits for queued jobs to finish, up to ctx.
// When ctx expires first, in-flight jobs are cancelled via their job context.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		return ctx.Err()
	}
}
