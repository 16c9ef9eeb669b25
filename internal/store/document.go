package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/docqa-api/internal/domain"
)

// DocumentStore defines the interface for document data persistence.
type DocumentStore interface {
	// Create saves a new document and assigns its ID.
	// Returns validation errors from the domain Document if data is invalid.
	Create(ctx context.Context, doc *domain.Document) error

	// GetByID retrieves a document by its ID.
	// Returns ErrDocumentNotFound if the document does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Document, error)

	// Exists reports whether a document with the given ID is stored.
	Exists(ctx context.Context, id int64) (bool, error)

	// List returns documents ordered by ID. A limit of zero or less means no limit.
	List(ctx context.Context, limit, offset int) ([]*domain.Document, error)

	// Delete removes a document and, through the foreign key cascade, its questions.
	// Returns ErrDocumentNotFound if the document does not exist.
	Delete(ctx context.Context, id int64) error

	// WithTx returns a DocumentStore bound to the provided transaction.
	WithTx(tx *sql.Tx) DocumentStore
}
