package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxDocumentTitleLength is the maximum number of characters in a document title.
const MaxDocumentTitleLength = 255

// Document is a stored text unit that questions are asked about.
// Apart from UpdatedAt bookkeeping a document is immutable once created.
type Document struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// NewDocument creates a new Document with the given title and content.
// The ID is left at zero; it is assigned by the record store on insert.
// Returns a ValidationError if the title or content is invalid.
func NewDocument(title, content string) (*Document, error) {
	doc := &Document{
		Title:     title,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}

	return doc, nil
}

// Validate checks the title and content constraints.
func (d *Document) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return NewValidationError("title", "cannot be empty", ErrEmptyContent)
	}

	if utf8.RuneCountInString(d.Title) > MaxDocumentTitleLength {
		return NewValidationError("title", "must be at most 255 characters", ErrValidation)
	}

	if strings.TrimSpace(d.Content) == "" {
		return NewValidationError("content", "cannot be empty", ErrEmptyContent)
	}

	return nil
}
