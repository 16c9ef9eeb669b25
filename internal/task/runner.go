package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/phrazzld/docqa-api/internal/metrics"
)

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int

	// Durable enables journal recovery on Start and the stuck task monitor.
	// Only meaningful with a TaskStore that survives restarts.
	Durable bool

	// StuckTaskAge defines how long a task can be in processing state
	// before it's considered stuck and reset
	StuckTaskAge time.Duration

	// StuckTaskCheckInterval defines how often to check for stuck tasks
	StuckTaskCheckInterval time.Duration
}

// DefaultTaskRunnerConfig returns the configuration NewTaskRunner falls back
// to for every unset field.
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:            4,
		QueueSize:              100,
		StuckTaskAge:           30 * time.Minute,
		StuckTaskCheckInterval: 5 * time.Minute,
	}
}

// TaskRunner manages background task processing
type TaskRunner struct {
	store      TaskStore
	queue      *TaskQueue
	pool       *WorkerPool
	config     TaskRunnerConfig
	logger     *slog.Logger
	metrics    *metrics.Metrics
	errHandler func(task Task, err error)

	decodersMu sync.RWMutex
	decoders   map[string]Decoder

	// held tracks tasks waiting outside the queue for their delay or for
	// room in the queue. stopping is guarded by heldMu.
	heldMu    sync.Mutex
	held      sync.WaitGroup
	heldCount atomic.Int64
	stopping  bool

	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	stopOnce   sync.Once
}

var _ Submitter = (*TaskRunner)(nil)

// NewTaskRunner creates a new TaskRunner
func NewTaskRunner(store TaskStore, config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "task_runner")

	// Unset fields fall back to the defaults.
	defaults := DefaultTaskRunnerConfig()
	if config.WorkerCount <= 0 {
		config.WorkerCount = defaults.WorkerCount
	}
	if config.QueueSize <= 0 {
		config.QueueSize = defaults.QueueSize
	}
	if config.StuckTaskCheckInterval <= 0 {
		config.StuckTaskCheckInterval = defaults.StuckTaskCheckInterval
	}
	if config.StuckTaskAge <= 0 {
		config.StuckTaskAge = defaults.StuckTaskAge
	}

	queue := NewTaskQueue(config.QueueSize, logger)
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: config.WorkerCount}, logger)

	ctx, cancel := context.WithCancel(context.Background())

	r := &TaskRunner{
		store:      store,
		queue:      queue,
		pool:       pool,
		config:     config,
		logger:     logger,
		decoders:   make(map[string]Decoder),
		ctx:        ctx,
		cancelFunc: cancel,
		errHandler: func(task Task, err error) {
			// Default error handler just logs the error
			logger.Error("task execution failed",
				"task_id", task.ID(),
				"task_type", task.Type(),
				"error", err)
		},
	}
	pool.SetProcessor(r.processTask)
	pool.SetErrorHandler(func(task Task, err error) {
		r.finish(context.Background(), task, TaskStatusFailed, err.Error())
		r.errHandler(task, err)
	})
	return r
}

// SetErrorHandler allows setting a custom error handler function
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	if handler != nil {
		r.errHandler = handler
	}
}

// SetMetrics attaches Prometheus instrumentation. Must be called before Start.
func (r *TaskRunner) SetMetrics(m *metrics.Metrics) {
	r.metrics = m
}

// RegisterDecoder registers the Decoder used to rebuild recovered tasks of taskType.
func (r *TaskRunner) RegisterDecoder(taskType string, d Decoder) {
	r.decodersMu.Lock()
	defer r.decodersMu.Unlock()
	r.decoders[taskType] = d
}

// QueueDepth returns the number of submitted tasks no worker has picked up
// yet, queued or held.
func (r *TaskRunner) QueueDepth() int {
	return r.queue.Len() + r.HeldCount()
}

// Submit records the task in the journal and dispatches it. It never blocks:
// a task with a start delay, or one that finds the queue full, is held in its
// own goroutine until the delay passes and the queue has room. Only a stopped
// runner rejects work, with an error wrapping ErrQueueClosed, and the journal
// entry is then marked failed.
func (r *TaskRunner) Submit(ctx context.Context, task Task) error {
	if err := r.store.SaveTask(ctx, task); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}

	if err := r.dispatch(task); err != nil {
		r.finish(context.WithoutCancel(ctx), task, TaskStatusFailed, err.Error())
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

// dispatch puts task on the queue now when it has no delay and there is
// room, and holds it otherwise.
func (r *TaskRunner) dispatch(task Task) error {
	delay := delayOf(task)
	if delay == 0 {
		err := r.queue.Enqueue(task)
		if !errors.Is(err, ErrQueueFull) {
			return err
		}
		r.logger.Debug("task queue full, holding task until there is room",
			"task_id", task.ID(),
			"task_type", task.Type())
	}

	r.heldMu.Lock()
	defer r.heldMu.Unlock()
	if r.stopping {
		return ErrQueueClosed
	}
	r.held.Add(1)
	r.heldCount.Add(1)
	go r.hold(task, delay)
	return nil
}

// hold waits out the task's delay, then waits for room in the queue. A task
// still held when the runner stops stays pending in the journal.
func (r *TaskRunner) hold(task Task, delay time.Duration) {
	defer r.held.Done()
	defer r.heldCount.Add(-1)

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-r.ctx.Done():
			return
		case <-timer.C:
		}
	}

	if err := r.queue.EnqueueWait(r.ctx, task); err != nil {
		r.logger.Warn("held task left pending, runner stopping",
			"task_id", task.ID(),
			"task_type", task.Type(),
			"error", err)
	}
}

// HeldCount returns the number of tasks waiting outside the queue.
func (r *TaskRunner) HeldCount() int {
	return int(r.heldCount.Load())
}

// Start recovers unfinished tasks when durable, then starts the workers and
// the stuck task monitor.
func (r *TaskRunner) Start() error {
	if r.config.Durable {
		if err := r.Recover(r.ctx); err != nil {
			return fmt.Errorf("failed to recover tasks: %w", err)
		}
	}

	r.pool.Start()

	if r.config.Durable {
		r.wg.Add(1)
		go r.stuckTaskMonitor()
	}

	r.logger.Info("task runner started",
		"worker_count", r.pool.WorkerCount(),
		"queue_size", r.config.QueueSize,
		"durable", r.config.Durable)
	return nil
}

// Stop gracefully shuts down the task runner. New submissions are rejected,
// in-flight tasks observe a cancelled context, and Stop returns once every
// worker and held task has exited. Tasks still queued or held are left
// pending in the journal.
func (r *TaskRunner) Stop() {
	r.stopOnce.Do(func() {
		r.heldMu.Lock()
		r.stopping = true
		r.heldMu.Unlock()

		r.queue.Close()
		r.cancelFunc()
		r.pool.Stop()
		r.held.Wait()
		r.wg.Wait()
		r.logger.Info("task runner stopped")
	})
}

// Recover re-queues pending tasks and resets interrupted processing tasks
// from the journal.
func (r *TaskRunner) Recover(ctx context.Context) error {
	pendingTasks, err := r.store.GetPendingTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending tasks: %w", err)
	}

	// Processing tasks were interrupted by a crash, regardless of age.
	processingTasks, err := r.store.GetProcessingTasks(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to get processing tasks: %w", err)
	}

	r.logger.Info("recovering unfinished tasks",
		"pending_count", len(pendingTasks),
		"processing_count", len(processingTasks))

	for _, t := range pendingTasks {
		r.requeue(ctx, t, "pending")
	}

	for _, t := range processingTasks {
		if err := r.store.UpdateTaskStatus(ctx, t.ID(), TaskStatusPending, "reset after recovery"); err != nil {
			r.logger.Error("failed to reset processing task status",
				"task_id", t.ID(),
				"task_type", t.Type(),
				"error", err)
			continue
		}
		r.requeue(ctx, t, "processing")
	}

	return nil
}

// requeue decodes a journal entry and puts it back on the queue.
func (r *TaskRunner) requeue(ctx context.Context, t Task, from string) {
	executable, err := r.rehydrate(t)
	if err != nil {
		r.logger.Error("cannot rebuild task from journal",
			"task_id", t.ID(),
			"task_type", t.Type(),
			"error", err)
		r.finish(ctx, t, TaskStatusFailed, err.Error())
		return
	}

	if err := r.dispatch(executable); err != nil {
		r.logger.Error("failed to requeue task",
			"task_id", t.ID(),
			"task_type", t.Type(),
			"previous_status", from,
			"error", err)
		return
	}
	r.metrics.TaskRecovered()
}

func (r *TaskRunner) rehydrate(t Task) (Task, error) {
	stored, ok := t.(*StoredTask)
	if !ok {
		return t, nil
	}

	r.decodersMu.RLock()
	decode, found := r.decoders[stored.TaskType]
	r.decodersMu.RUnlock()
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNotRehydrated, stored.TaskType)
	}
	return decode(stored.TaskID, stored.TaskPayload)
}

// processTask handles execution of a single task
func (r *TaskRunner) processTask(ctx context.Context, task Task, workerID int) {
	logger := r.logger.With(
		"task_id", task.ID(),
		"task_type", task.Type(),
		"worker_id", workerID,
	)
	// Journal writes must land even while the pool is shutting down.
	journalCtx := context.WithoutCancel(ctx)

	if err := r.store.UpdateTaskStatus(journalCtx, task.ID(), TaskStatusProcessing, ""); err != nil {
		logger.Error("failed to update task status to processing", "error", err)
		return
	}

	logger.Debug("processing task")

	err := task.Execute(ctx)

	switch {
	case err == nil:
		logger.Debug("task completed successfully")
		r.finish(journalCtx, task, TaskStatusCompleted, "")

	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		// Interrupted by Stop; leave it for recovery.
		logger.Warn("task interrupted by shutdown", "error", err)
		if updateErr := r.store.UpdateTaskStatus(journalCtx, task.ID(), TaskStatusPending,
			"interrupted by shutdown"); updateErr != nil {
			logger.Error("failed to reset interrupted task", "error", updateErr)
		}

	default:
		r.finish(journalCtx, task, TaskStatusFailed, err.Error())
		r.errHandler(task, err)
	}
}

// finish records a terminal journal status.
func (r *TaskRunner) finish(ctx context.Context, task Task, status TaskStatus, msg string) {
	if err := r.store.UpdateTaskStatus(ctx, task.ID(), status, msg); err != nil {
		r.logger.Error("failed to update task status",
			"task_id", task.ID(),
			"status", status,
			"error", err)
	}
	r.metrics.TaskProcessed(task.Type(), string(status))
}

// stuckTaskMonitor periodically checks for tasks that have been in "processing"
// state for too long and resets them
func (r *TaskRunner) stuckTaskMonitor() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.StuckTaskCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.resetStuckTasks(r.ctx)
		}
	}
}

func (r *TaskRunner) resetStuckTasks(ctx context.Context) {
	stuckTasks, err := r.store.GetProcessingTasks(ctx, r.config.StuckTaskAge)
	if err != nil {
		r.logger.Error("failed to check for stuck tasks", "error", err)
		return
	}
	if len(stuckTasks) == 0 {
		return
	}

	r.logger.Info("found stuck tasks", "count", len(stuckTasks))
	for _, t := range stuckTasks {
		if err := r.store.UpdateTaskStatus(ctx, t.ID(), TaskStatusPending,
			"reset after being stuck in processing state"); err != nil {
			r.logger.Error("failed to reset stuck task status",
				"task_id", t.ID(),
				"task_type", t.Type(),
				"error", err)
			continue
		}
		r.requeue(ctx, t, "stuck")
	}
}
