package postgres

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

// PostgresDocumentStore implements the store.DocumentStore interface
// using a PostgreSQL database as the storage backend.
type PostgresDocumentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDocumentStore creates a new PostgreSQL implementation of the DocumentStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresDocumentStore(db store.DBTX, logger *slog.Logger) *PostgresDocumentStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresDocumentStore{
		db:     db,
		logger: logger.With(slog.String("component", "document_store")),
	}
}

// Ensure PostgresDocumentStore implements store.DocumentStore interface
var _ store.DocumentStore = (*PostgresDocumentStore)(nil)

// Create implements store.DocumentStore.Create
func (s *PostgresDocumentStore) Create(ctx context.Context, doc *domain.Document) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := doc.Validate(); err != nil {
		log.Warn("document validation failed during create", slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO documents (title, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query,
		doc.Title,
		doc.Content,
		doc.CreatedAt,
		nullTime(doc.UpdatedAt),
	).Scan(&doc.ID)
	if err != nil {
		log.Error("failed to create document", slog.String("error", err.Error()))
		return MapError(err)
	}

	log.Info("document created successfully", slog.Int64("document_id", doc.ID))
	return nil
}

// GetByID implements store.DocumentStore.GetByID
// Returns store.ErrDocumentNotFound if the document does not exist.
func (s *PostgresDocumentStore) GetByID(ctx context.Context, id int64) (*domain.Document, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, title, content, created_at, updated_at
		FROM documents
		WHERE id = $1
	`

	doc, err := scanDocument(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("document not found", slog.Int64("document_id", id))
			return nil, store.ErrDocumentNotFound
		}
		log.Error("failed to get document by ID",
			slog.Int64("document_id", id),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return doc, nil
}

// Exists implements store.DocumentStore.Exists
func (s *PostgresDocumentStore) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM documents WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to check document existence",
			slog.Int64("document_id", id),
			slog.String("error", err.Error()))
		return false, MapError(err)
	}
	return exists, nil
}

// List implements store.DocumentStore.List
func (s *PostgresDocumentStore) List(ctx context.Context, limit, offset int) ([]*domain.Document, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, title, content, created_at, updated_at
		FROM documents
		ORDER BY id ASC
		LIMIT $1 OFFSET $2
	`
	// LIMIT NULL means no limit in PostgreSQL.
	var limitArg any
	if limit > 0 {
		limitArg = limit
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx, query, limitArg, offset)
	if err != nil {
		log.Error("failed to list documents", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	docs := []*domain.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			log.Error("failed to scan document row", slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document rows: %w", err)
	}

	return docs, nil
}

// Delete implements store.DocumentStore.Delete
// The questions of the document are removed by the ON DELETE CASCADE foreign key.
func (s *PostgresDocumentStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete document",
			slog.Int64("document_id", id),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", store.ErrDeleteFailed, MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrDocumentNotFound); err != nil {
		return err
	}

	log.Info("document deleted", slog.Int64("document_id", id))
	return nil
}

// WithTx implements store.DocumentStore.WithTx
func (s *PostgresDocumentStore) WithTx(tx *sql.Tx) store.DocumentStore {
	return &PostgresDocumentStore{
		db:     tx,
		logger: s.logger,
	}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var updatedAt sql.NullTime
	if err := row.Scan(&doc.ID, &doc.Title, &doc.Content, &doc.CreatedAt, &updatedAt); err != nil {
		return nil, err
	}
	if updatedAt.Valid {
		t := updatedAt.Time.UTC()
		doc.UpdatedAt = &t
	}
	doc.CreatedAt = doc.CreatedAt.UTC()
	return &doc, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
