package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/docqa-api/internal/domain"
	"github.com/phrazzld/docqa-api/internal/platform/logger"
	"github.com/phrazzld/docqa-api/internal/store"
)

// QuestionStore implements store.QuestionStore on SQLite.
type QuestionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewQuestionStore creates a QuestionStore over a connection or transaction.
func NewQuestionStore(db store.DBTX, logger *slog.Logger) *QuestionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &QuestionStore{
		db:     db,
		logger: logger.With(slog.String("component", "question_store")),
	}
}

var _ store.QuestionStore = (*QuestionStore)(nil)

const questionColumns = `id, document_id, question, answer, status, created_at, updated_at`

// Create implements store.QuestionStore.Create
func (s *QuestionStore) Create(ctx context.Context, q *domain.Question) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := q.Validate(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO questions (document_id, question, answer, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		q.DocumentID, q.Text, nullString(q.Answer), string(q.Status), q.CreatedAt, q.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during question creation",
				slog.Int64("document_id", q.DocumentID))
			return fmt.Errorf("%w: document with ID %d not found", store.ErrInvalidEntity, q.DocumentID)
		}
		log.Error("failed to create question",
			slog.Int64("document_id", q.DocumentID),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading question id: %w", err)
	}
	q.ID = id
	return nil
}

// GetByID implements store.QuestionStore.GetByID
func (s *QuestionStore) GetByID(ctx context.Context, id int64) (*domain.Question, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = ?`, id)

	q, err := scanQuestion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrQuestionNotFound
		}
		return nil, MapError(err)
	}
	return q, nil
}

// Update implements store.QuestionStore.Update
func (s *QuestionStore) Update(ctx context.Context, q *domain.Question) error {
	if err := q.Validate(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE questions SET answer = ?, status = ?, updated_at = ? WHERE id = ?`,
		nullString(q.Answer), string(q.Status), q.UpdatedAt, q.ID,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update question",
			slog.Int64("question_id", q.ID),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", store.ErrUpdateFailed, MapError(err))
	}
	return checkRowsAffected(result, store.ErrQuestionNotFound)
}

// ListByDocument implements store.QuestionStore.ListByDocument
func (s *QuestionStore) ListByDocument(ctx context.Context, documentID int64) ([]*domain.Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE document_id = ? ORDER BY id ASC`, documentID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	questions := []*domain.Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question row: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// WithTx implements store.QuestionStore.WithTx
func (s *QuestionStore) WithTx(tx *sql.Tx) store.QuestionStore {
	return &QuestionStore{db: tx, logger: s.logger}
}

func scanQuestion(row rowScanner) (*domain.Question, error) {
	var q domain.Question
	var answer sql.NullString
	var status string
	var createdAt, updatedAt sql.NullTime
	if err := row.Scan(&q.ID, &q.DocumentID, &q.Text, &answer, &status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if answer.Valid {
		a := answer.String
		q.Answer = &a
	}
	q.Status = domain.QuestionStatus(status)
	q.CreatedAt = createdAt.Time.UTC()
	q.UpdatedAt = updatedAt.Time.UTC()
	return &q, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
