package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kabir-fx/abhiraksha/constants"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is shut down")
)

// Job is one inbox file waiting for extraction.
type Job struct {
	Path        string
	Document    constants.DocumentType
	SubmittedAt time.Time
	TraceID     string
}

// NewJob stamps a job with a fresh trace id.
func NewJob(path string, doc constants.DocumentType) Job {
	return Job{Path: path, Document: doc, SubmittedAt: time.Now().UTC(), TraceID: uuid.NewString()}
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

// Handler processes a single job. Errors are logged and counted, never retried.
type Handler func(ctx context.Context, job Job) error

type WorkerPool struct {
	handler Handler
	workers int
	size    int
	timeout time.Duration
	logger  *slog.Logger
	onDepth func(int)

	jobs     chan Job
	wg       sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
	cancel   context.CancelFunc
	finished chan struct{}
}

type PoolOption func(*WorkerPool)

func WithWorkers(n int) PoolOption {
	return func(p *WorkerPool) {
		if n > 0 {
			p.workers = n
		}
	}
}

func WithQueueSize(n int) PoolOption {
	return func(p *WorkerPool) {
		if n > 0 {
			p.size = n
		}
	}
}

// WithProcessTimeout bounds each handler call. Zero means no bound.
func WithProcessTimeout(d time.Duration) PoolOption {
	return func(p *WorkerPool) { p.timeout = d }
}

func WithLogger(l *slog.Logger) PoolOption {
	return func(p *WorkerPool) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithDepthObserver is called with the queue depth after every enqueue and dequeue.
func WithDepthObserver(fn func(int)) PoolOption {
	return func(p *WorkerPool) { p.onDepth = fn }
}

// NewWorkerPool starts the workers immediately. They run until Shutdown.
func NewWorkerPool(handler Handler, opts ...PoolOption) *WorkerPool {
	p := &WorkerPool{
		handler:  handler,
		workers:  1,
		size:     16,
		logger:   slog.Default(),
		finished: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.jobs = make(chan Job, p.size)

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.work(ctx, i)
	}
	go func() {
		p.wg.Wait()
		close(p.finished)
	}()
	return p
}

// Enqueue never blocks: a full buffer yields ErrQueueFull.
func (p *WorkerPool) Enqueue(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrQueueClosed
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now().UTC()
	}
	if job.TraceID == "" {
		job.TraceID = uuid.NewString()
	}
	select {
	case p.jobs <- job:
		p.observe()
		p.logger.Debug("queue.enqueue", "path", job.Path, "document", job.Document, "trace_id", job.TraceID)
		return nil
	default:
		p.logger.Warn("queue.full", "path", job.Path, "capacity", p.size)
		return ErrQueueFull
	}
}

// Shutdown stops intake and drains queued jobs. If ctx expires first the
// in-flight handlers are cancelled.
func (p *WorkerPool) Shutdown(ctx context.Context) {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.mu.Unlock()

	select {
	case <-p.finished:
	case <-ctx.Done():
		p.logger.Warn("queue.shutdown.timeout", "pending", len(p.jobs))
		p.cancel()
		<-p.finished
	}
	p.cancel()
}

func (p *WorkerPool) Len() int { return len(p.jobs) }

func (p *WorkerPool) work(ctx context.Context, id int) {
	defer p.wg.Done()
	for job := range p.jobs {
		p.observe()
		if ctx.Err() != nil {
			p.logger.Warn("queue.job.dropped", "worker", id, "path", job.Path, "trace_id", job.TraceID)
			continue
		}
		start := time.Now()
		err := p.run(ctx, job)
		elapsed := time.Since(start).Milliseconds()
		if err != nil {
			p.logger.Error("queue.job.failed", "worker", id, "path", job.Path, "trace_id", job.TraceID, "elapsed_ms", elapsed, "err", err)
			continue
		}
		p.logger.Info("queue.job.done", "worker", id, "path", job.Path, "trace_id", job.TraceID, "elapsed_ms", elapsed)
	}
}

func (p *WorkerPool) run(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("queue.job.panic", "path", job.Path, "panic", r)
			err = errors.New("job handler panicked")
		}
	}()
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	return p.handler(ctx, job)
}

func (p *WorkerPool) observe() {
	if p.onDepth != nil {
		p.onDepth(len(p.jobs))
	}
}

var _ Queue = (*WorkerPool)(nil)
