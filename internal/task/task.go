package task

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// IsValid reports whether s is one of the known statuses.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusProcessing, TaskStatusCompleted, TaskStatusFailed:
		return true
	}
	return false
}

// Task type constants
const (
	// TaskTypeAnswerGeneration represents the task type for answering a question
	TaskTypeAnswerGeneration = "answer_generation"
)

// Task represents a unit of background work to be processed
type Task interface {
	// ID returns the task's unique identifier
	ID() uuid.UUID

	// Type returns the task type identifier
	Type() string

	// Payload returns the task data as a byte slice
	Payload() []byte

	// Status returns the current task status
	Status() TaskStatus

	// Execute runs the task logic
	Execute(ctx context.Context) error
}

// TaskQueueReader provides read-only access to the task channel
// allowing workers to consume tasks without the ability to enqueue
type TaskQueueReader interface {
	// GetChannel returns a read-only channel for consuming tasks
	GetChannel() <-chan Task
}

// Delayed is implemented by tasks that must not start until a delay has
// passed since submission. The runner holds such tasks outside the queue, so
// the wait occupies no worker.
type Delayed interface {
	Delay() time.Duration
}

// delayOf returns the start delay of task, zero if it has none.
func delayOf(task Task) time.Duration {
	if d, ok := task.(Delayed); ok && d.Delay() > 0 {
		return d.Delay()
	}
	return 0
}

// TaskStore defines the interface for the task journal
type TaskStore interface {
	// SaveTask records a newly submitted task as pending
	SaveTask(ctx context.Context, task Task) error

	// UpdateTaskStatus updates the status of a task.
	// Updating an unknown task is a no-op.
	UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error

	// GetPendingTasks retrieves all tasks with "pending" status, oldest first
	GetPendingTasks(ctx context.Context) ([]Task, error)

	// GetProcessingTasks retrieves tasks with "processing" status
	// If olderThan is non-zero, only returns tasks that have been in this state
	// longer than the specified duration
	GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Task, error)
}

// Submitter is the part of TaskRunner used by code that dispatches work.
type Submitter interface {
	Submit(ctx context.Context, task Task) error
}

// Decoder rebuilds an executable task from a journal entry.
type Decoder func(id uuid.UUID, payload []byte) (Task, error)
