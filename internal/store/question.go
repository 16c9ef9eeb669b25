package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/docqa-api/internal/domain"
)

// QuestionStore defines the interface for question data persistence.
type QuestionStore interface {
	// Create saves a new question and assigns its ID.
	// Returns ErrInvalidEntity if the referenced document does not exist.
	Create(ctx context.Context, q *domain.Question) error

	// GetByID retrieves a question by its ID.
	// Returns ErrQuestionNotFound if the question does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Question, error)

	// Update persists the answer, status and updated_at of an existing question.
	// Returns ErrQuestionNotFound if the row is gone.
	Update(ctx context.Context, q *domain.Question) error

	// ListByDocument returns the questions of a document in insertion order.
	ListByDocument(ctx context.Context, documentID int64) ([]*domain.Question, error)

	// WithTx returns a QuestionStore bound to the provided transaction.
	WithTx(tx *sql.Tx) QuestionStore
}
