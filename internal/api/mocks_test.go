package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/docqa-api/internal/domain"
	"github.com/phrazzld/docqa-api/internal/service"
)

// MockDocumentService is a function-field fake of service.DocumentService.
type MockDocumentService struct {
	CreateDocumentFn func(ctx context.Context, title, content string) (*domain.Document, error)
	GetDocumentFn    func(ctx context.Context, id int64) (*domain.Document, error)
	ExistsFn         func(ctx context.Context, id int64) (bool, error)
	ListDocumentsFn  func(ctx context.Context, limit, offset int) ([]*domain.Document, error)
	DeleteDocumentFn func(ctx context.Context, id int64) error
}

var _ service.DocumentService = (*MockDocumentService)(nil)

func (m *MockDocumentService) CreateDocument(ctx context.Context, title, content string) (*domain.Document, error) {
	return m.CreateDocumentFn(ctx, title, content)
}

func (m *MockDocumentService) GetDocument(ctx context.Context, id int64) (*domain.Document, error) {
	return m.GetDocumentFn(ctx, id)
}

func (m *MockDocumentService) DocumentExists(ctx context.Context, id int64) (bool, error) {
	return m.ExistsFn(ctx, id)
}

func (m *MockDocumentService) ListDocuments(ctx context.Context, limit, offset int) ([]*domain.Document, error) {
	return m.ListDocumentsFn(ctx, limit, offset)
}

func (m *MockDocumentService) DeleteDocument(ctx context.Context, id int64) error {
	return m.DeleteDocumentFn(ctx, id)
}

// MockQuestionService is a function-field fake of service.QuestionService.
type MockQuestionService struct {
	SubmitQuestionFn          func(ctx context.Context, documentID int64, text string) (*domain.Question, error)
	GetQuestionFn             func(ctx context.Context, id int64) (*domain.Question, error)
	ListQuestionsByDocumentFn func(ctx context.Context, documentID int64) ([]*domain.Question, error)
	RecordAnswerFn            func(ctx context.Context, id int64, answer string) (*domain.Question, error)
	HoldPendingFn             func(ctx context.Context, id int64) error
}

var _ service.QuestionService = (*MockQuestionService)(nil)

func (m *MockQuestionService) SubmitQuestion(ctx context.Context, documentID int64, text string) (*domain.Question, error) {
	return m.SubmitQuestionFn(ctx, documentID, text)
}

func (m *MockQuestionService) GetQuestion(ctx context.Context, id int64) (*domain.Question, error) {
	return m.GetQuestionFn(ctx, id)
}

func (m *MockQuestionService) ListQuestionsByDocument(ctx context.Context, documentID int64) ([]*domain.Question, error) {
	return m.ListQuestionsByDocumentFn(ctx, documentID)
}

func (m *MockQuestionService) RecordAnswer(ctx context.Context, id int64, answer string) (*domain.Question, error) {
	return m.RecordAnswerFn(ctx, id, answer)
}

func (m *MockQuestionService) HoldPending(ctx context.Context, id int64) error {
	return m.HoldPendingFn(ctx, id)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var fixedTime = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func sampleDocument(id int64) *domain.Document {
	return &domain.Document{ID: id, Title: "Handbook", Content: "All staff get 25 days of leave.", CreatedAt: fixedTime}
}

func sampleQuestion(id, documentID int64) *domain.Question {
	return &domain.Question{
		ID:         id,
		DocumentID: documentID,
		Text:       "How many days of leave?",
		Status:     domain.QuestionStatusPending,
		CreatedAt:  fixedTime,
		UpdatedAt:  fixedTime,
	}
}

// newTestRouter wires the fakes into the real router.
func newTestRouter(docs *MockDocumentService, questions *MockQuestionService) http.Handler {
	return NewRouter(RouterDeps{
		Documents: docs,
		Questions: questions,
		Logger:    discardLogger(),
	})
}
