package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/docqa-api/internal/domain"
	"github.com/phrazzld/docqa-api/internal/platform/logger"
	"github.com/phrazzld/docqa-api/internal/store"
)

// DocumentService provides document-related operations
type DocumentService interface {
	// CreateDocument validates and stores a new document
	CreateDocument(ctx context.Context, title, content string) (*domain.Document, error)

	// GetDocument retrieves a document by its ID
	GetDocument(ctx context.Context, id int64) (*domain.Document, error)

	// DocumentExists reports whether a document is stored
	DocumentExists(ctx context.Context, id int64) (bool, error)

	// ListDocuments returns documents in ID order
	ListDocuments(ctx context.Context, limit, offset int) ([]*domain.Document, error)

	// DeleteDocument removes a document together with its questions
	DeleteDocument(ctx context.Context, id int64) error
}

// documentServiceImpl implements the DocumentService interface
type documentServiceImpl struct {
	db        store.TxBeginner
	documents store.DocumentStore
	logger    *slog.Logger
}

// NewDocumentService creates a new DocumentService.
// It returns an error if any of the required dependencies are nil.
func NewDocumentService(
	db store.TxBeginner,
	documents store.DocumentStore,
	logger *slog.Logger,
) (DocumentService, error) {
	if db == nil {
		return nil, &DocumentServiceError{Operation: "create_service", Message: "db cannot be nil"}
	}
	if documents == nil {
		return nil, &DocumentServiceError{Operation: "create_service", Message: "documents cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &documentServiceImpl{
		db:        db,
		documents: documents,
		logger:    logger.With("component", "document_service"),
	}, nil
}

// CreateDocument validates the input and inserts the document in one transaction
func (s *documentServiceImpl) CreateDocument(
	ctx context.Context,
	title, content string,
) (*domain.Document, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	doc, err := domain.NewDocument(title, content)
	if err != nil {
		log.Debug("rejected invalid document", "error", err)
		return nil, err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.documents.WithTx(tx).Create(ctx, doc)
	})
	if err != nil {
		log.Error("failed to create document", "error", err)
		return nil, NewDocumentServiceError("create_document", "failed to save document", err)
	}

	log.Info("document created", "document_id", doc.ID)
	return doc, nil
}

// GetDocument retrieves a document by its ID
func (s *documentServiceImpl) GetDocument(ctx context.Context, id int64) (*domain.Document, error) {
	doc, err := s.documents.GetByID(ctx, id)
	if err != nil {
		return nil, NewDocumentServiceError("get_document", "failed to retrieve document", err)
	}
	return doc, nil
}

// DocumentExists reports whether a document is stored
func (s *documentServiceImpl) DocumentExists(ctx context.Context, id int64) (bool, error) {
	exists, err := s.documents.Exists(ctx, id)
	if err != nil {
		return false, NewDocumentServiceError("document_exists", "failed to check document", err)
	}
	return exists, nil
}

// ListDocuments returns documents in ID order
func (s *documentServiceImpl) ListDocuments(
	ctx context.Context,
	limit, offset int,
) ([]*domain.Document, error) {
	docs, err := s.documents.List(ctx, limit, offset)
	if err != nil {
		return nil, NewDocumentServiceError("list_documents", "failed to list documents", err)
	}
	return docs, nil
}

// DeleteDocument removes a document; its questions go with it through the
// foreign key cascade. A generator still waiting on one of those questions
// finds it gone and skips.
func (s *documentServiceImpl) DeleteDocument(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.documents.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		if !store.IsNotFoundError(err) {
			log.Error("failed to delete document", "error", err, "document_id", id)
		}
		return NewDocumentServiceError("delete_document", "failed to delete document", err)
	}

	log.Info("document deleted", "document_id", id)
	return nil
}
