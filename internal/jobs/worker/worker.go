package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/collections-backend/internal/jobs/runtime"
	"github.com/yungbote/collections-backend/internal/platform/logger"
)

var (
	ErrQueueFull  = errors.New("job queue full")
	ErrPoolClosed = errors.New("job pool stopped")
)

type Options struct {
	Concurrency int
	QueueSize   int
}

// Pool runs submitted jobs on a fixed set of goroutines. Jobs are not
// cancelled when the pool stops; Stop drains what was already accepted.
type Pool struct {
	log      *logger.Logger
	registry *runtime.Registry
	tracker  runtime.Tracker
	opts     Options

	mu      sync.RWMutex
	queue   chan *runtime.Job
	started bool
	closed  bool
	group   *errgroup.Group
}

func NewPool(baseLog *logger.Logger, registry *runtime.Registry, tracker runtime.Tracker, opts Options) *Pool {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 64
	}
	return &Pool{
		log:      baseLog.With("component", "JobWorker"),
		registry: registry,
		tracker:  tracker,
		opts:     opts,
		queue:    make(chan *runtime.Job, opts.QueueSize),
	}
}

func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.closed {
		return
	}
	p.started = true
	p.log.Info("Starting job worker pool", "concurrency", p.opts.Concurrency, "queue_size", p.opts.QueueSize)

	// Running jobs outlive request and shutdown cancellation.
	jobCtx := context.WithoutCancel(ctx)
	g := &errgroup.Group{}
	for i := 0; i < p.opts.Concurrency; i++ {
		workerID := i + 1
		g.Go(func() error {
			p.runLoop(jobCtx, workerID)
			return nil
		})
	}
	p.group = g
}

// Submit enqueues job without blocking.
func (p *Pool) Submit(job *runtime.Job) error {
	if job == nil {
		return fmt.Errorf("nil job")
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now().UTC()
	}
	select {
	case p.queue <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop refuses new jobs and waits for accepted ones until ctx ends.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	g := p.group
	p.mu.Unlock()

	if g == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()
	select {
	case <-done:
		p.log.Info("Job worker pool drained")
		return nil
	case <-ctx.Done():
		p.log.Warn("Job worker pool stop timed out", "error", ctx.Err())
		return ctx.Err()
	}
}

func (p *Pool) runLoop(ctx context.Context, workerID int) {
	for job := range p.queue {
		p.runJob(ctx, workerID, job)
	}
	p.log.Debug("Worker loop stopped", "worker_id", workerID)
}

func (p *Pool) runJob(ctx context.Context, workerID int, job *runtime.Job) {
	jc := runtime.NewContext(ctx, job, p.tracker, p.log)

	h, ok := p.registry.Get(job.Type)
	if !ok {
		p.log.Warn("No handler registered for job_type",
			"worker_id", workerID,
			"job_type", job.Type,
			"job_id", job.ID,
		)
		jc.Fail("dispatch", &missingHandlerError{JobType: job.Type})
		return
	}

	defer func() {
		if r := recover(); r != nil {
			p.log.Error("Job handler panic",
				"worker_id", workerID,
				"job_id", job.ID,
				"job_type", job.Type,
				"panic", r,
			)
			jc.Fail("panic", errFromRecover(r))
		}
	}()

	if runErr := h.Run(jc); runErr != nil {
		// Most pipelines call jc.Fail themselves; this is a safety net.
		jc.Fail("run", runErr)
		return
	}
	if !jc.Finished() {
		p.log.Warn("Job returned without finishing; marking failed", "job_id", job.ID, "job_type", job.Type)
		jc.Fail("run", errors.New("job ended without a terminal state"))
	}
}

type missingHandlerError struct{ JobType string }

func (e *missingHandlerError) Error() string { return "no handler registered for job_type=" + e.JobType }

func errFromRecover(v any) error { return &panicError{Val: v} }

type panicError struct{ Val any }

func (e *panicError) Error() string { return fmt.Sprintf("panic: %v", e.Val) }
