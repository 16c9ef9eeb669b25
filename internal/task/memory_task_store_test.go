package task

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTaskStore_Lifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryTaskStore()
	task := newMockTask()

	require.NoError(t, store.SaveTask(ctx, task))
	status, ok := store.Status(task.ID())
	require.True(t, ok)
	assert.Equal(t, TaskStatusPending, status)

	require.NoError(t, store.UpdateTaskStatus(ctx, task.ID(), TaskStatusProcessing, ""))
	processing, err := store.GetProcessingTasks(ctx, 0)
	require.NoError(t, err)
	require.Len(t, processing, 1)
	assert.Same(t, task, processing[0])

	require.NoError(t, store.UpdateTaskStatus(ctx, task.ID(), TaskStatusCompleted, ""))
	_, ok = store.Status(task.ID())
	assert.False(t, ok, "terminal entries are dropped")
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, 1, store.Finished(TaskStatusCompleted))
}

func TestMemoryTaskStore_UnknownTaskIsNoop(t *testing.T) {
	t.Parallel()

	store := NewMemoryTaskStore()
	assert.NoError(t, store.UpdateTaskStatus(context.Background(), uuid.New(), TaskStatusFailed, "x"))
	assert.Equal(t, 0, store.Finished(TaskStatusFailed))
}

func TestMemoryTaskStore_PendingOrderedByCreation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryTaskStore()
	base := time.Now()
	tick := 0
	store.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	tasks := []*mockTask{newMockTask(), newMockTask(), newMockTask()}
	for _, task := range tasks {
		require.NoError(t, store.SaveTask(ctx, task))
	}

	pending, err := store.GetPendingTasks(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	for i, task := range tasks {
		assert.Equal(t, task.ID(), pending[i].ID())
	}
}

func TestMemoryTaskStore_ProcessingOlderThan(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryTaskStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	old, fresh := newMockTask(), newMockTask()
	require.NoError(t, store.SaveTask(ctx, old))
	require.NoError(t, store.SaveTask(ctx, fresh))
	require.NoError(t, store.UpdateTaskStatus(ctx, old.ID(), TaskStatusProcessing, ""))

	now = now.Add(10 * time.Minute)
	require.NoError(t, store.UpdateTaskStatus(ctx, fresh.ID(), TaskStatusProcessing, ""))

	stuck, err := store.GetProcessingTasks(ctx, 5*time.Minute)
	require.NoError(t, err)
	require.Len(t, stuck, 1)
	assert.Equal(t, old.ID(), stuck[0].ID())
}
