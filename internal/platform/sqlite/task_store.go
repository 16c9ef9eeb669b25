package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/docqa-api/internal/platform/logger"
	"github.com/phrazzld/docqa-api/internal/store"
	"github.com/phrazzld/docqa-api/internal/task"
)

// TaskStore implements task.TaskStore on SQLite.
type TaskStore struct {
	db     store.DBTX
	logger *slog.Logger
	now    func() time.Time
}

// NewTaskStore creates a TaskStore.
func NewTaskStore(db store.DBTX, logger *slog.Logger) *TaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

var _ task.TaskStore = (*TaskStore)(nil)

// SaveTask implements task.TaskStore.SaveTask
func (s *TaskStore) SaveTask(ctx context.Context, t task.Task) error {
	now := s.now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, type, payload, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID().String(), t.Type(), t.Payload(), string(t.Status()), now, now,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to save task",
			slog.String("task_id", t.ID().String()),
			slog.String("task_type", t.Type()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to save task to database: %w", MapError(err))
	}
	return nil
}

// UpdateTaskStatus implements task.TaskStore.UpdateTaskStatus
func (s *TaskStore) UpdateTaskStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status task.TaskStatus,
	errorMsg string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		string(status), errorMsg, s.now(), taskID.String(),
	)
	if err != nil {
		log.Error("failed to update task status",
			slog.String("task_id", taskID.String()),
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to update task status: %w", MapError(err))
	}

	if err := checkRowsAffected(result, store.ErrTaskNotFound); err != nil {
		if store.IsNotFoundError(err) {
			log.Warn("no task found with ID to update status", slog.String("task_id", taskID.String()))
			return nil
		}
		return err
	}
	return nil
}

// GetPendingTasks implements task.TaskStore.GetPendingTasks
func (s *TaskStore) GetPendingTasks(ctx context.Context) ([]task.Task, error) {
	return s.getTasksByStatus(ctx, task.TaskStatusPending, 0)
}

// GetProcessingTasks implements task.TaskStore.GetProcessingTasks
func (s *TaskStore) GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]task.Task, error) {
	return s.getTasksByStatus(ctx, task.TaskStatusProcessing, olderThan)
}

// getTasksByStatus filters by age in Go; SQLite stores DATETIME as text and
// comparing it against a bound time.Time is not reliable.
func (s *TaskStore) getTasksByStatus(
	ctx context.Context,
	status task.TaskStatus,
	olderThan time.Duration,
) ([]task.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, payload, status, error_message, created_at, updated_at
		 FROM tasks WHERE status = ? ORDER BY created_at ASC, rowid ASC`,
		string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks by status: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cutoff := s.now().Add(-olderThan)

	var tasks []task.Task
	for rows.Next() {
		var (
			st                   task.StoredTask
			id, taskStatus       string
			createdAt, updatedAt sql.NullTime
		)
		if err := rows.Scan(&id, &st.TaskType, &st.TaskPayload, &taskStatus, &st.ErrorMessage,
			&createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		st.TaskID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid task id %q: %w", id, err)
		}
		st.TaskStatus = task.TaskStatus(taskStatus)
		st.CreatedAt = createdAt.Time.UTC()
		st.UpdatedAt = updatedAt.Time.UTC()

		if olderThan > 0 && !st.UpdatedAt.Before(cutoff) {
			continue
		}
		tasks = append(tasks, &st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}
	return tasks, nil
}
