package task

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotRehydrated is returned when a journal entry is executed without
// first being decoded into its concrete task type.
var ErrNotRehydrated = errors.New("task loaded from journal has no registered decoder")

// StoredTask is a journal entry loaded from a TaskStore. It carries the
// serialized task but cannot execute it; TaskRunner decodes it through the
// Decoder registered for its type.
type StoredTask struct {
	TaskID       uuid.UUID
	TaskType     string
	TaskPayload  []byte
	TaskStatus   TaskStatus
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

var _ Task = (*StoredTask)(nil)

// ID returns the task's unique identifier
func (t *StoredTask) ID() uuid.UUID { return t.TaskID }

// Type returns the task type identifier
func (t *StoredTask) Type() string { return t.TaskType }

// Payload returns the task data as a byte slice
func (t *StoredTask) Payload() []byte { return t.TaskPayload }

// Status returns the journal status at load time
func (t *StoredTask) Status() TaskStatus { return t.TaskStatus }

// Execute always fails with ErrNotRehydrated.
func (t *StoredTask) Execute(ctx context.Context) error {
	return ErrNotRehydrated
}
