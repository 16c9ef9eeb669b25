package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/phrazzld/docqa-api/internal/domain"
	"github.com/phrazzld/docqa-api/internal/metrics"
	"github.com/phrazzld/docqa-api/internal/platform/logger"
	"github.com/phrazzld/docqa-api/internal/store"
	"github.com/phrazzld/docqa-api/internal/task"
)

// AnswerTaskFactory creates the background task that answers one question
type AnswerTaskFactory interface {
	CreateTask(questionID int64) (task.Task, error)
}

// QuestionService provides question-related operations
type QuestionService interface {
	// SubmitQuestion stores a pending question and dispatches its answer task
	SubmitQuestion(ctx context.Context, documentID int64, text string) (*domain.Question, error)

	// GetQuestion retrieves the latest committed state of a question
	GetQuestion(ctx context.Context, id int64) (*domain.Question, error)

	// ListQuestionsByDocument returns the questions of a document in insertion order
	ListQuestionsByDocument(ctx context.Context, documentID int64) ([]*domain.Question, error)

	// RecordAnswer marks the question answered inside one transaction
	RecordAnswer(ctx context.Context, id int64, answer string) (*domain.Question, error)

	// HoldPending keeps a pending question pending with no answer; answered questions are untouched
	HoldPending(ctx context.Context, id int64) error
}

// QuestionServiceDeps groups the collaborators of the question service
type QuestionServiceDeps struct {
	DB        store.TxBeginner
	Documents store.DocumentStore
	Questions store.QuestionStore
	Factory   AnswerTaskFactory
	Runner    task.Submitter
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// questionServiceImpl implements the QuestionService interface
type questionServiceImpl struct {
	db        store.TxBeginner
	documents store.DocumentStore
	questions store.QuestionStore
	factory   AnswerTaskFactory
	runner    task.Submitter
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

var _ task.QuestionService = (*questionServiceImpl)(nil)

// NewQuestionService creates a new QuestionService.
// It returns an error if any of the required dependencies are nil.
// Metrics are optional.
func NewQuestionService(deps QuestionServiceDeps) (QuestionService, error) {
	switch {
	case deps.DB == nil:
		return nil, missingDependency("db")
	case deps.Documents == nil:
		return nil, missingDependency("documents")
	case deps.Questions == nil:
		return nil, missingDependency("questions")
	case deps.Factory == nil:
		return nil, missingDependency("factory")
	case deps.Runner == nil:
		return nil, missingDependency("runner")
	}

	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	return &questionServiceImpl{
		db:        deps.DB,
		documents: deps.Documents,
		questions: deps.Questions,
		factory:   deps.Factory,
		runner:    deps.Runner,
		metrics:   deps.Metrics,
		logger:    log.With("component", "question_service"),
	}, nil
}

func missingDependency(name string) error {
	return &QuestionServiceError{
		Operation: "create_service",
		Message:   name + " cannot be nil",
	}
}

// SubmitQuestion validates the text, checks the document, inserts the pending
// question in one transaction and, after commit, dispatches exactly one answer
// task. It never waits for the task. A dispatch failure is logged and counted
// but the committed question is still returned.
func (s *questionServiceImpl) SubmitQuestion(
	ctx context.Context,
	documentID int64,
	text string,
) (*domain.Question, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With("document_id", documentID)

	q, err := domain.NewQuestion(documentID, text)
	if err != nil {
		log.Debug("rejected invalid question", "error", err)
		return nil, err
	}

	exists, err := s.documents.Exists(ctx, documentID)
	if err != nil {
		log.Error("failed to check document existence", "error", err)
		return nil, NewQuestionServiceError("submit_question", "failed to check document", err)
	}
	if !exists {
		return nil, ErrDocumentNotFound
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.questions.WithTx(tx).Create(ctx, q)
	})
	if err != nil {
		// The document was deleted between the existence check and the insert.
		if errors.Is(err, store.ErrInvalidEntity) {
			return nil, ErrDocumentNotFound
		}
		log.Error("failed to create question", "error", err)
		return nil, NewQuestionServiceError("submit_question", "failed to save question", err)
	}

	log = log.With("question_id", q.ID)
	s.metrics.QuestionSubmitted()
	log.Info("question created with pending status")

	s.dispatch(ctx, log, q.ID)
	return q, nil
}

func (s *questionServiceImpl) dispatch(ctx context.Context, log *slog.Logger, questionID int64) {
	t, err := s.factory.CreateTask(questionID)
	if err == nil {
		err = s.runner.Submit(ctx, t)
	}
	if err != nil {
		s.metrics.DispatchFailed()
		log.Error("failed to dispatch answer generation, question stays pending", "error", err)
		return
	}
	log.Debug("answer generation dispatched", "task_id", t.ID())
}

// GetQuestion retrieves the latest committed state of a question
func (s *questionServiceImpl) GetQuestion(ctx context.Context, id int64) (*domain.Question, error) {
	q, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return nil, NewQuestionServiceError("get_question", "failed to retrieve question", err)
	}
	return q, nil
}

// ListQuestionsByDocument returns the questions of a document in insertion order
func (s *questionServiceImpl) ListQuestionsByDocument(
	ctx context.Context,
	documentID int64,
) ([]*domain.Question, error) {
	exists, err := s.documents.Exists(ctx, documentID)
	if err != nil {
		return nil, NewQuestionServiceError("list_questions", "failed to check document", err)
	}
	if !exists {
		return nil, ErrDocumentNotFound
	}

	questions, err := s.questions.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, NewQuestionServiceError("list_questions", "failed to list questions", err)
	}
	return questions, nil
}

// RecordAnswer re-reads the question, marks it answered and saves it in one
// transaction. Answering twice overwrites with the new answer.
func (s *questionServiceImpl) RecordAnswer(
	ctx context.Context,
	id int64,
	answer string,
) (*domain.Question, error) {
	var answered *domain.Question

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txQuestions := s.questions.WithTx(tx)

		q, err := txQuestions.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := q.MarkAnswered(answer); err != nil {
			return err
		}
		if err := txQuestions.Update(ctx, q); err != nil {
			return err
		}
		answered = q
		return nil
	})
	if err != nil {
		return nil, NewQuestionServiceError("record_answer", "failed to save answer", err)
	}

	return answered, nil
}

// HoldPending keeps a pending question pending with no answer. Answered
// questions are terminal and are left untouched.
func (s *questionServiceImpl) HoldPending(ctx context.Context, id int64) error {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txQuestions := s.questions.WithTx(tx)

		q, err := txQuestions.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !q.HoldPending() {
			return nil
		}
		return txQuestions.Update(ctx, q)
	})
	return NewQuestionServiceError("hold_pending", "failed to reset question", err)
}
