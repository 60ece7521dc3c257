package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// PoolConfig holds configuration options for the worker pool
type PoolConfig struct {
	// WorkerCount determines how many concurrent worker goroutines to start
	// If zero or negative, defaults to 1
	WorkerCount int

	// JobTimeout bounds a single job. Zero means no bound.
	JobTimeout time.Duration
}

// Pool runs jobs from a queue on a fixed number of goroutines.
type Pool struct {
	queue        QueueReader
	config       PoolConfig
	wg           sync.WaitGroup
	startOnce    sync.Once
	logger       *slog.Logger
	errorHandler func(job Job, err error)
}

// NewPool creates a pool reading from queue.
func NewPool(queue QueueReader, config PoolConfig, logger *slog.Logger) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	if config.WorkerCount <= 0 {
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
		config.WorkerCount = 1
	}
	return &Pool{
		queue:  queue,
		config: config,
		logger: logger.With(slog.String("component", "worker_pool")),
	}
}

// SetErrorHandler sets a callback for failed jobs. Failures are always logged.
func (p *Pool) SetErrorHandler(handler func(job Job, err error)) {
	p.errorHandler = handler
}

// Start launches the workers. Calling it more than once has no effect.
func (p *Pool) Start() {
	p.startOnce.Do(func() {
		for i := 0; i < p.config.WorkerCount; i++ {
			p.wg.Add(1)
			go p.work(i)
		}
		p.logger.Info("worker pool started", "worker_count", p.config.WorkerCount)
	})
}

// Wait blocks until every worker has exited, which happens once the queue
// is closed and drained, or ctx is done.
func (p *Pool) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		p.logger.Info("worker pool stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("worker pool did not drain: %w", ctx.Err())
	}
}

func (p *Pool) work(id int) {
	defer p.wg.Done()
	p.logger.Debug("starting worker", "worker_id", id)

	for job := range p.queue.Jobs() {
		p.run(id, job)
	}
	p.logger.Debug("stopping worker", "worker_id", id)
}

func (p *Pool) run(id int, job Job) {
	ctx := context.Background()
	if p.config.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.JobTimeout)
		defer cancel()
	}

	start := time.Now()
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("job panicked: %v", r)
			}
		}()
		return job.Execute(ctx)
	}()

	if err != nil {
		p.logger.Error("job failed",
			"worker_id", id,
			"job", job.Name(),
			"error", err,
			"elapsed", time.Since(start))
		if p.errorHandler != nil {
			p.errorHandler(job, err)
		}
		return
	}
	p.logger.Debug("job completed",
		"worker_id", id,
		"job", job.Name(),
		"elapsed", time.Since(start))
}
