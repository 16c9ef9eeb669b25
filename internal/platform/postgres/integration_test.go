//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/phrazzld/docqa-api/internal/config"
	"github.com/phrazzld/docqa-api/internal/domain"
	"github.com/phrazzld/docqa-api/internal/platform/migrations"
	"github.com/phrazzld/docqa-api/internal/platform/postgres"
	"github.com/phrazzld/docqa-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Requires DATABASE_URL pointing at a disposable PostgreSQL database.
func TestPostgresStores_Integration(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := postgres.Open(ctx, config.DatabaseConfig{
		Driver:          config.DriverPostgres,
		URL:             url,
		MaxOpenConns:    5,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Minute,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.Run(ctx, db, config.DriverPostgres, migrations.CommandReset, nil))
	require.NoError(t, migrations.Up(ctx, db, config.DriverPostgres, nil))

	documents := postgres.NewPostgresDocumentStore(db, nil)
	questions := postgres.NewPostgresQuestionStore(db, nil)

	doc, err := domain.NewDocument("Integration", "Body")
	require.NoError(t, err)
	require.NoError(t, documents.Create(ctx, doc))

	q, err := domain.NewQuestion(doc.ID, "Does it work?")
	require.NoError(t, err)
	require.NoError(t, questions.Create(ctx, q))

	err = store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		txQuestions := questions.WithTx(tx)
		current, err := txQuestions.GetByID(ctx, q.ID)
		if err != nil {
			return err
		}
		if err := current.MarkAnswered("yes"); err != nil {
			return err
		}
		return txQuestions.Update(ctx, current)
	})
	require.NoError(t, err)

	got, err := questions.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuestionStatusAnswered, got.Status)

	orphan, err := domain.NewQuestion(doc.ID+1000, "orphan?")
	require.NoError(t, err)
	assert.ErrorIs(t, questions.Create(ctx, orphan), store.ErrInvalidEntity)

	require.NoError(t, documents.Delete(ctx, doc.ID))
	_, err = questions.GetByID(ctx, q.ID)
	assert.ErrorIs(t, err, store.ErrQuestionNotFound)
}
