package postgres

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

// PostgresQuestionStore implements the store.QuestionStore interface
// using a PostgreSQL database as the storage backend.
type PostgresQuestionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresQuestionStore creates a new PostgreSQL implementation of the QuestionStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresQuestionStore(db store.DBTX, logger *slog.Logger) *PostgresQuestionStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresQuestionStore{
		db:     db,
		logger: logger.With(slog.String("component", "question_store")),
	}
}

// Ensure PostgresQuestionStore implements store.QuestionStore interface
var _ store.QuestionStore = (*PostgresQuestionStore)(nil)

// Create implements store.QuestionStore.Create
// Returns store.ErrInvalidEntity if the document does not exist (foreign key violation).
func (s *PostgresQuestionStore) Create(ctx context.Context, q *domain.Question) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := q.Validate(); err != nil {
		log.Warn("question validation failed during create", slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO questions (document_id, question, answer, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query,
		q.DocumentID,
		q.Text,
		nullString(q.Answer),
		string(q.Status),
		q.CreatedAt,
		q.UpdatedAt,
	).Scan(&q.ID)
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

	log.Debug("question created",
		slog.Int64("question_id", q.ID),
		slog.Int64("document_id", q.DocumentID))
	return nil
}

// GetByID implements store.QuestionStore.GetByID
// Returns store.ErrQuestionNotFound if the question does not exist.
func (s *PostgresQuestionStore) GetByID(ctx context.Context, id int64) (*domain.Question, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, document_id, question, answer, status, created_at, updated_at
		FROM questions
		WHERE id = $1
	`

	q, err := scanQuestion(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("question not found", slog.Int64("question_id", id))
			return nil, store.ErrQuestionNotFound
		}
		log.Error("failed to get question by ID",
			slog.Int64("question_id", id),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return q, nil
}

// Update implements store.QuestionStore.Update
// Only the mutable columns are written; document_id, question and created_at never change.
func (s *PostgresQuestionStore) Update(ctx context.Context, q *domain.Question) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := q.Validate(); err != nil {
		log.Warn("question validation failed during update",
			slog.Int64("question_id", q.ID),
			slog.String("error", err.Error()))
		return err
	}

	query := `
		UPDATE questions
		SET answer = $1, status = $2, updated_at = $3
		WHERE id = $4
	`
	result, err := s.db.ExecContext(ctx, query,
		nullString(q.Answer),
		string(q.Status),
		q.UpdatedAt,
		q.ID,
	)
	if err != nil {
		log.Error("failed to update question",
			slog.Int64("question_id", q.ID),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", store.ErrUpdateFailed, MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrQuestionNotFound); err != nil {
		log.Debug("question vanished before update", slog.Int64("question_id", q.ID))
		return err
	}

	log.Debug("question updated",
		slog.Int64("question_id", q.ID),
		slog.String("status", string(q.Status)))
	return nil
}

// ListByDocument implements store.QuestionStore.ListByDocument
func (s *PostgresQuestionStore) ListByDocument(ctx context.Context, documentID int64) ([]*domain.Question, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, document_id, question, answer, status, created_at, updated_at
		FROM questions
		WHERE document_id = $1
		ORDER BY id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, documentID)
	if err != nil {
		log.Error("failed to list questions",
			slog.Int64("document_id", documentID),
			slog.String("error", err.Error()))
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating question rows: %w", err)
	}

	return questions, nil
}

// WithTx implements store.QuestionStore.WithTx
func (s *PostgresQuestionStore) WithTx(tx *sql.Tx) store.QuestionStore {
	return &PostgresQuestionStore{
		db:     tx,
		logger: s.logger,
	}
}

func scanQuestion(row rowScanner) (*domain.Question, error) {
	var q domain.Question
	var answer sql.NullString
	var status string
	if err := row.Scan(&q.ID, &q.DocumentID, &q.Text, &answer, &status, &q.CreatedAt, &q.UpdatedAt); err != nil {
		return nil, err
	}
	if answer.Valid {
		a := answer.String
		q.Answer = &a
	}
	q.Status = domain.QuestionStatus(status)
	q.CreatedAt = q.CreatedAt.UTC()
	q.UpdatedAt = q.UpdatedAt.UTC()
	return &q, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
