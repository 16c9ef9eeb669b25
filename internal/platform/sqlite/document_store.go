package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/docqa-api/internal/domain"
	"github.com/phrazzld/docqa-api/internal/platform/logger"
	"github.com/phrazzld/docqa-api/internal/store"
)

// DocumentStore implements store.DocumentStore on SQLite.
type DocumentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewDocumentStore creates a DocumentStore over a connection or transaction.
// If logger is nil, a default logger will be used.
func NewDocumentStore(db store.DBTX, logger *slog.Logger) *DocumentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentStore{
		db:     db,
		logger: logger.With(slog.String("component", "document_store")),
	}
}

var _ store.DocumentStore = (*DocumentStore)(nil)

// Create implements store.DocumentStore.Create
func (s *DocumentStore) Create(ctx context.Context, doc *domain.Document) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := doc.Validate(); err != nil {
		log.Warn("document validation failed during create", slog.String("error", err.Error()))
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (title, content, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		doc.Title, doc.Content, doc.CreatedAt, nullTime(doc.UpdatedAt),
	)
	if err != nil {
		log.Error("failed to create document", slog.String("error", err.Error()))
		return MapError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading document id: %w", err)
	}
	doc.ID = id

	log.Info("document created successfully", slog.Int64("document_id", doc.ID))
	return nil
}

// GetByID implements store.DocumentStore.GetByID
func (s *DocumentStore) GetByID(ctx context.Context, id int64) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, content, created_at, updated_at FROM documents WHERE id = ?`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrDocumentNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get document by ID",
			slog.Int64("document_id", id),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return doc, nil
}

// Exists implements store.DocumentStore.Exists
func (s *DocumentStore) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM documents WHERE id = ?)`, id,
	).Scan(&exists)
	if err != nil {
		return false, MapError(err)
	}
	return exists, nil
}

// List implements store.DocumentStore.List
func (s *DocumentStore) List(ctx context.Context, limit, offset int) ([]*domain.Document, error) {
	// LIMIT -1 means no limit in SQLite.
	if limit <= 0 {
		limit = -1
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, content, created_at, updated_at FROM documents ORDER BY id ASC LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	docs := []*domain.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Delete implements store.DocumentStore.Delete
func (s *DocumentStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete document",
			slog.Int64("document_id", id),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", store.ErrDeleteFailed, MapError(err))
	}
	if err := checkRowsAffected(result, store.ErrDocumentNotFound); err != nil {
		return err
	}

	log.Info("document deleted", slog.Int64("document_id", id))
	return nil
}

// WithTx implements store.DocumentStore.WithTx
func (s *DocumentStore) WithTx(tx *sql.Tx) store.DocumentStore {
	return &DocumentStore{db: tx, logger: s.logger}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var createdAt, updatedAt sql.NullTime
	if err := row.Scan(&doc.ID, &doc.Title, &doc.Content, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	doc.CreatedAt = createdAt.Time.UTC()
	if updatedAt.Valid {
		t := updatedAt.Time.UTC()
		doc.UpdatedAt = &t
	}
	return &doc, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
