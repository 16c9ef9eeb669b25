package api

import (
	"time"

	"github.com/phrazzld/docqa-api/internal/domain"
)

// CreateDocumentRequest represents the request body for creating a document
type CreateDocumentRequest struct {
	Title   string `json:"title" validate:"required,max=255"`
	Content string `json:"content" validate:"required"`
}

// SubmitQuestionRequest represents the request body for asking a question about a document
type SubmitQuestionRequest struct {
	Question string `json:"question" validate:"required"`
}

// DocumentResponse represents the response data for a document
type DocumentResponse struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// QuestionResponse represents the response data for a question.
// Answer is null until the question is answered.
type QuestionResponse struct {
	ID         int64     `json:"id"`
	DocumentID int64     `json:"document_id"`
	Question   string    `json:"question"`
	Answer     *string   `json:"answer"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// RootResponse is returned by the root endpoint
type RootResponse struct {
	Message string `json:"message"`
	Docs    string `json:"docs"`
	Health  string `json:"health"`
}

// documentToResponse converts a domain.Document to a DocumentResponse
func documentToResponse(doc *domain.Document) DocumentResponse {
	return DocumentResponse{
		ID:        doc.ID,
		Title:     doc.Title,
		Content:   doc.Content,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}

func documentsToResponse(docs []*domain.Document) []DocumentResponse {
	out := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, documentToResponse(doc))
	}
	return out
}

// questionToResponse converts a domain.Question to a QuestionResponse
func questionToResponse(q *domain.Question) QuestionResponse {
	return QuestionResponse{
		ID:         q.ID,
		DocumentID: q.DocumentID,
		Question:   q.Text,
		Answer:     q.Answer,
		Status:     string(q.Status),
		CreatedAt:  q.CreatedAt,
		UpdatedAt:  q.UpdatedAt,
	}
}

func questionsToResponse(questions []*domain.Question) []QuestionResponse {
	out := make([]QuestionResponse, 0, len(questions))
	for _, q := range questions {
		out = append(out, questionToResponse(q))
	}
	return out
}
