package testutils

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/docqa-api/internal/domain"
	"github.com/phrazzld/docqa-api/internal/store"
)

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// AssertCloseNoError closes closer and reports a failure on error.
func AssertCloseNoError(t testing.TB, closer io.Closer) {
	t.Helper()
	if closer == nil {
		return
	}
	assert.NoError(t, closer.Close(), "failed to close resource")
}

// AssertRollbackNoError rolls back tx; an already finished transaction is fine.
func AssertRollbackNoError(t testing.TB, tx *sql.Tx) {
	t.Helper()
	if tx == nil {
		return
	}
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		t.Errorf("failed to rollback transaction: %v", err)
	}
}

// MustInsertDocument stores a valid document. Title defaults to "Test Document".
func MustInsertDocument(t testing.TB, documents store.DocumentStore, title ...string) *domain.Document {
	t.Helper()

	name := "Test Document"
	if len(title) > 0 {
		name = title[0]
	}
	doc, err := domain.NewDocument(name, "Some content to ask about.")
	require.NoError(t, err, "failed to build test document")
	require.NoError(t, documents.Create(context.Background(), doc), "failed to insert test document")
	return doc
}

// MustInsertQuestion stores a pending question for documentID.
func MustInsertQuestion(
	t testing.TB,
	questions store.QuestionStore,
	documentID int64,
	text string,
) *domain.Question {
	t.Helper()

	q, err := domain.NewQuestion(documentID, text)
	require.NoError(t, err, "failed to build test question")
	require.NoError(t, questions.Create(context.Background(), q), "failed to insert test question")
	return q
}

// CountRows counts the rows of table matching where ("" for all rows).
func CountRows(t testing.TB, db store.DBTX, table, where string, args ...any) int {
	t.Helper()

	query := "SELECT COUNT(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}
	var count int
	require.NoError(t, db.QueryRowContext(context.Background(), query, args...).Scan(&count))
	return count
}
