package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// ProcessFunc handles one task on behalf of a worker. ctx is cancelled when
// the pool stops.
type ProcessFunc func(ctx context.Context, task Task, workerID int)

// WorkerPool manages a pool of worker goroutines that process tasks
// from a task queue. It handles graceful shutdown and worker lifecycle.
type WorkerPool struct {
	// taskQueue provides read access to the tasks to be processed
	taskQueue TaskQueueReader

	// workerCount is the number of concurrent workers to start
	workerCount int

	// wg tracks active worker goroutines for clean shutdown
	wg sync.WaitGroup

	// ctx is used for cancellation and shutdown signaling
	ctx context.Context

	// cancel is the function to call to cancel the context
	cancel context.CancelFunc

	logger *slog.Logger

	// process runs each dequeued task. Defaults to executing the task and
	// passing any error to errorHandler.
	process ProcessFunc

	// errorHandler is called when a task execution fails
	// If nil, errors are only logged
	errorHandler func(task Task, err error)

	startOnce sync.Once
	stopOnce  sync.Once
}

// WorkerPoolConfig holds configuration options for the worker pool
type WorkerPoolConfig struct {
	// WorkerCount determines how many concurrent worker goroutines to start
	// If zero or negative, defaults to 1
	WorkerCount int
}

// NewWorkerPool creates a new worker pool with the specified configuration
func NewWorkerPool(taskQueue TaskQueueReader, config WorkerPoolConfig, logger *slog.Logger) *WorkerPool {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "worker_pool")

	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
	}

	ctx, cancel := context.WithCancel(context.Background())

	p := &WorkerPool{
		taskQueue:   taskQueue,
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
	}
	p.process = p.execute
	return p
}

// SetErrorHandler allows setting a custom error handler for task execution failures.
// It only affects the default processor and must be called before Start.
func (p *WorkerPool) SetErrorHandler(handler func(task Task, err error)) {
	p.errorHandler = handler
}

// SetProcessor replaces the per-task processing function. Must be called before Start.
func (p *WorkerPool) SetProcessor(fn ProcessFunc) {
	if fn != nil {
		p.process = fn
	}
}

// WorkerCount returns the number of workers the pool runs.
func (p *WorkerPool) WorkerCount() int {
	return p.workerCount
}

// Start launches the worker goroutines. Subsequent calls are no-ops.
func (p *WorkerPool) Start() {
	p.startOnce.Do(func() {
		p.logger.Info("starting worker pool", "worker_count", p.workerCount)
		for i := 0; i < p.workerCount; i++ {
			p.wg.Add(1)
			go p.worker(i)
		}
	})
}

// Stop cancels the pool context, aborting in-flight tasks that honor it,
// and waits for every worker to return.
func (p *WorkerPool) Stop() {
	p.stopOnce.Do(func() {
		p.cancel()
		p.wg.Wait()
		p.logger.Info("worker pool stopped")
	})
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("starting worker", "worker_id", id)
	tasks := p.taskQueue.GetChannel()

	for {
		select {
		case <-p.ctx.Done():
			p.logger.Debug("stopping worker", "worker_id", id)
			return

		case task, ok := <-tasks:
			if !ok {
				p.logger.Debug("task channel closed, stopping worker", "worker_id", id)
				return
			}
			p.safeProcess(task, id)
		}
	}
}

// safeProcess keeps a panicking task from killing its worker.
func (p *WorkerPool) safeProcess(task Task, workerID int) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("task panicked: %v", r)
			p.logger.Error("recovered from task panic",
				"task_id", task.ID(),
				"task_type", task.Type(),
				"worker_id", workerID,
				"panic", r)
			if p.errorHandler != nil {
				p.errorHandler(task, err)
			}
		}
	}()
	p.process(p.ctx, task, workerID)
}

func (p *WorkerPool) execute(ctx context.Context, task Task, workerID int) {
	if err := task.Execute(ctx); err != nil {
		p.logger.Error("task execution failed",
			"task_id", task.ID(),
			"task_type", task.Type(),
			"worker_id", workerID,
			"error", err)
		if p.errorHandler != nil {
			p.errorHandler(task, err)
		}
	}
}
