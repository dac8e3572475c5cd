// Package worker runs queued analysis jobs on a pool of goroutines.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/okian/dueline/internal/adapters/mq/queue"
	"github.com/okian/dueline/internal/domain/model"
	"github.com/okian/dueline/pkg/logger"
	"github.com/okian/dueline/pkg/metrics"
)

const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// ErrAnalyzerPanic is delivered in place of a result when the analyzer panics.
var ErrAnalyzerPanic = errors.New("analyzer panicked")

// Job abstracts what workers read off the queue.
type Job = queue.Job

// Analyzer produces a prediction for one request.
type Analyzer interface {
	Analyze(ctx context.Context, req model.Request) (model.Prediction, error)
}

// AnalyzerFunc adapts a function to Analyzer.
type AnalyzerFunc func(ctx context.Context, req model.Request) (model.Prediction, error)

// Analyze implements Analyzer.
func (f AnalyzerFunc) Analyze(ctx context.Context, req model.Request) (model.Prediction, error) {
	return f(ctx, req)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes jobs and replies on each job's channel.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue    Queue
	analyzer Analyzer
	name     string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, analyzer Analyzer, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		analyzer: analyzer,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named("worker")
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, job)
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process runs one job and delivers its result. A job without a reply
// channel is run for its side effects only.
func (w *InMemoryWorker) process(ctx context.Context, job Job) { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	start := time.Now()
	p, err := w.analyze(ctx, job.Request)
	metrics.RecordWorkerJob(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		metrics.RecordErrorByComponent("worker", "analyze")
		w.logger.Error(ctx, "analysis failed",
			logger.String("job_id", job.ID),
			logger.String("name", job.Request.Name),
			logger.Error(err),
		)
		err = fmt.Errorf("job %s: %w", job.ID, err)
	}

	if job.Reply == nil {
		return
	}
	select {
	case job.Reply <- model.JobResult{JobID: job.ID, Prediction: p, Err: err}:
	case <-ctx.Done():
	}
}

// analyze runs the analyzer and turns a panic into ErrAnalyzerPanic so one
// bad job cannot take the worker down.
func (w *InMemoryWorker) analyze(ctx context.Context, req model.Request) (p model.Prediction, err error) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordErrorByComponent("worker", "panic")
			p, err = model.Prediction{}, fmt.Errorf("%w: %v", ErrAnalyzerPanic, r)
		}
	}()
	return w.analyzer.Analyze(ctx, req)
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a new worker pool. workerCount < 1 sizes the pool from
// the CPU count.
func NewPool(workerCount int, q Queue, analyzer Analyzer, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		workerOpts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		pool.workers[i] = NewInMemoryWorker(q, analyzer, workerOpts...)
	}

	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and waits for every worker to stop.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}
	for _, w := range p.workers {
		close(w.shutdown)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("worker %d shutdown: %w", i, shutdownCtx.Err())
		}
	}
	metrics.UpdateWorkerCount(0)
	return nil
}
