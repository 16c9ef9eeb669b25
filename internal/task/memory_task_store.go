package task

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryTaskStore is an in-process TaskStore. Entries are dropped as soon as
// they reach a terminal status, so memory use tracks in-flight work only;
// per-status totals are kept for inspection. Nothing survives a restart.
type MemoryTaskStore struct {
	mutex    sync.RWMutex
	entries  map[uuid.UUID]*memoryEntry
	finished map[TaskStatus]int
	now      func() time.Time
}

type memoryEntry struct {
	task      Task
	status    TaskStatus
	errorMsg  string
	createdAt time.Time
	updatedAt time.Time
}

var _ TaskStore = (*MemoryTaskStore)(nil)

// NewMemoryTaskStore creates an empty MemoryTaskStore.
func NewMemoryTaskStore() *MemoryTaskStore {
	return &MemoryTaskStore{
		entries:  make(map[uuid.UUID]*memoryEntry),
		finished: make(map[TaskStatus]int),
		now:      time.Now,
	}
}

// SaveTask records task as pending.
func (s *MemoryTaskStore) SaveTask(ctx context.Context, task Task) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := s.now()
	s.entries[task.ID()] = &memoryEntry{
		task:      task,
		status:    TaskStatusPending,
		createdAt: now,
		updatedAt: now,
	}
	return nil
}

// UpdateTaskStatus updates the status of a tracked task. Unknown IDs are ignored.
func (s *MemoryTaskStore) UpdateTaskStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status TaskStatus,
	errorMsg string,
) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	entry, exists := s.entries[taskID]
	if !exists {
		return nil
	}

	if status == TaskStatusCompleted || status == TaskStatusFailed {
		delete(s.entries, taskID)
		s.finished[status]++
		return nil
	}

	entry.status = status
	entry.errorMsg = errorMsg
	entry.updatedAt = s.now()
	return nil
}

// GetPendingTasks retrieves all tasks with "pending" status, oldest first
func (s *MemoryTaskStore) GetPendingTasks(ctx context.Context) ([]Task, error) {
	return s.collect(TaskStatusPending, 0), nil
}

// GetProcessingTasks retrieves tasks with "processing" status
func (s *MemoryTaskStore) GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Task, error) {
	return s.collect(TaskStatusProcessing, olderThan), nil
}

func (s *MemoryTaskStore) collect(status TaskStatus, olderThan time.Duration) []Task {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	now := s.now()
	matched := make([]*memoryEntry, 0)
	for _, entry := range s.entries {
		if entry.status != status {
			continue
		}
		// If olderThan is zero, include every entry with the status
		if olderThan == 0 || now.Sub(entry.updatedAt) > olderThan {
			matched = append(matched, entry)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].createdAt.Before(matched[j].createdAt)
	})

	tasks := make([]Task, len(matched))
	for i, entry := range matched {
		tasks[i] = entry.task
	}
	return tasks
}

// Status returns the current status of a tracked task.
func (s *MemoryTaskStore) Status(taskID uuid.UUID) (TaskStatus, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	entry, ok := s.entries[taskID]
	if !ok {
		return "", false
	}
	return entry.status, true
}

// Len returns the number of tasks not yet in a terminal status.
func (s *MemoryTaskStore) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.entries)
}

// Finished returns how many tasks reached the given terminal status.
func (s *MemoryTaskStore) Finished(status TaskStatus) int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.finished[status]
}
