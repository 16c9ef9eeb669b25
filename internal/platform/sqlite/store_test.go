package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/docqa-api/internal/config"
	"github.com/phrazzld/docqa-api/internal/domain"
	"github.com/phrazzld/docqa-api/internal/platform/migrations"
	"github.com/phrazzld/docqa-api/internal/platform/sqlite"
	"github.com/phrazzld/docqa-api/internal/store"
	"github.com/phrazzld/docqa-api/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.Open(ctx, config.DatabaseConfig{
		Driver: config.DriverSQLite,
		URL:    filepath.Join(t.TempDir(), "docqa.db"),
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Up(ctx, db, config.DriverSQLite, nil))
	return db
}

func createDocument(t *testing.T, documents store.DocumentStore) *domain.Document {
	t.Helper()
	doc, err := domain.NewDocument("Title", "Content")
	require.NoError(t, err)
	require.NoError(t, documents.Create(context.Background(), doc))
	return doc
}

func TestDSN(t *testing.T) {
	assert.True(t, strings.HasPrefix(sqlite.DSN("data.db"), "data.db?_pragma=foreign_keys(1)"))
	assert.True(t, strings.HasPrefix(sqlite.DSN("file:data.db?mode=rwc"), "file:data.db?mode=rwc&_pragma="))
}

func TestDocumentStore(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	documents := sqlite.NewDocumentStore(db, nil)

	first := createDocument(t, documents)
	second := createDocument(t, documents)
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)

	got, err := documents.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Title", got.Title)
	assert.Equal(t, "Content", got.Content)
	assert.WithinDuration(t, first.CreatedAt, got.CreatedAt, time.Millisecond)
	assert.Nil(t, got.UpdatedAt)

	_, err = documents.GetByID(ctx, 42)
	assert.ErrorIs(t, err, store.ErrDocumentNotFound)

	exists, err := documents.Exists(ctx, second.ID)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = documents.Exists(ctx, 42)
	require.NoError(t, err)
	assert.False(t, exists)

	all, err := documents.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	page, err := documents.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, second.ID, page[0].ID)

	require.NoError(t, documents.Delete(ctx, first.ID))
	assert.ErrorIs(t, documents.Delete(ctx, first.ID), store.ErrDocumentNotFound)
}

func TestQuestionStore(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	documents := sqlite.NewDocumentStore(db, nil)
	questions := sqlite.NewQuestionStore(db, nil)
	doc := createDocument(t, documents)

	q, err := domain.NewQuestion(doc.ID, "What is it?")
	require.NoError(t, err)
	require.NoError(t, questions.Create(ctx, q))
	assert.Equal(t, int64(1), q.ID)

	got, err := questions.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuestionStatusPending, got.Status)
	assert.Nil(t, got.Answer)
	assert.Equal(t, doc.ID, got.DocumentID)

	require.NoError(t, got.MarkAnswered("an answer"))
	require.NoError(t, questions.Update(ctx, got))

	answered, err := questions.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuestionStatusAnswered, answered.Status)
	require.NotNil(t, answered.Answer)
	assert.Equal(t, "an answer", *answered.Answer)

	listed, err := questions.ListByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	empty, err := questions.ListByDocument(ctx, doc.ID+1)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = questions.GetByID(ctx, 99)
	assert.ErrorIs(t, err, store.ErrQuestionNotFound)
}

func TestQuestionStore_MissingDocument(t *testing.T) {
	db := openTestDB(t)
	questions := sqlite.NewQuestionStore(db, nil)

	q, err := domain.NewQuestion(7, "orphan?")
	require.NoError(t, err)
	assert.ErrorIs(t, questions.Create(context.Background(), q), store.ErrInvalidEntity)
}

func TestQuestionStore_CascadeDelete(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	documents := sqlite.NewDocumentStore(db, nil)
	questions := sqlite.NewQuestionStore(db, nil)
	doc := createDocument(t, documents)

	q, err := domain.NewQuestion(doc.ID, "Gone soon?")
	require.NoError(t, err)
	require.NoError(t, questions.Create(ctx, q))

	require.NoError(t, documents.Delete(ctx, doc.ID))

	_, err = questions.GetByID(ctx, q.ID)
	assert.ErrorIs(t, err, store.ErrQuestionNotFound)

	require.NoError(t, q.MarkAnswered("late"))
	assert.ErrorIs(t, questions.Update(ctx, q), store.ErrQuestionNotFound)
}

func TestStores_WithTx(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	documents := sqlite.NewDocumentStore(db, nil)
	questions := sqlite.NewQuestionStore(db, nil)
	doc := createDocument(t, documents)

	err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		q, err := domain.NewQuestion(doc.ID, "rolled back?")
		if err != nil {
			return err
		}
		if err := questions.WithTx(tx).Create(ctx, q); err != nil {
			return err
		}
		return store.ErrInvalidEntity
	})
	require.ErrorIs(t, err, store.ErrInvalidEntity)

	listed, err := questions.ListByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestTaskStore(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	tasks := sqlite.NewTaskStore(db, nil)

	older := &task.StoredTask{
		TaskID:      uuid.New(),
		TaskType:    task.TaskTypeAnswerGeneration,
		TaskPayload: []byte(`{"question_id":1}`),
		TaskStatus:  task.TaskStatusPending,
	}
	newer := &task.StoredTask{
		TaskID:      uuid.New(),
		TaskType:    task.TaskTypeAnswerGeneration,
		TaskPayload: []byte(`{"question_id":2}`),
		TaskStatus:  task.TaskStatusPending,
	}
	require.NoError(t, tasks.SaveTask(ctx, older))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, tasks.SaveTask(ctx, newer))

	pending, err := tasks.GetPendingTasks(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, older.TaskID, pending[0].ID())
	assert.Equal(t, []byte(`{"question_id":1}`), pending[0].Payload())

	require.NoError(t, tasks.UpdateTaskStatus(ctx, older.TaskID, task.TaskStatusProcessing, ""))
	require.NoError(t, tasks.UpdateTaskStatus(ctx, uuid.New(), task.TaskStatusFailed, "unknown"))

	processing, err := tasks.GetProcessingTasks(ctx, 0)
	require.NoError(t, err)
	require.Len(t, processing, 1)
	assert.Equal(t, task.TaskStatusProcessing, processing[0].Status())

	// Just updated, so not stuck yet.
	stuck, err := tasks.GetProcessingTasks(ctx, time.Hour)
	require.NoError(t, err)
	assert.Empty(t, stuck)

	pending, err = tasks.GetPendingTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}
