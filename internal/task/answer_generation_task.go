package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/docqa-api/internal/domain"
	"github.com/phrazzld/docqa-api/internal/generation"
	"github.com/phrazzld/docqa-api/internal/metrics"
	"github.com/phrazzld/docqa-api/internal/store"
)

// Common errors
var (
	ErrNilQuestionService = errors.New("question service cannot be nil")
	ErrNilGenerator       = errors.New("generator cannot be nil")
	ErrNilLogger          = errors.New("logger cannot be nil")
	ErrInvalidQuestionID  = errors.New("question ID must be positive")

	// ErrGenerationFailed wraps the cause of every failed answer generation run.
	ErrGenerationFailed = errors.New("answer generation failed")
)

// QuestionService is the part of the question lifecycle the generator needs.
// Not-found conditions must match store.ErrQuestionNotFound via errors.Is.
type QuestionService interface {
	// GetQuestion retrieves the latest committed state of a question
	GetQuestion(ctx context.Context, id int64) (*domain.Question, error)

	// RecordAnswer marks the question answered inside one transaction
	RecordAnswer(ctx context.Context, id int64, answer string) (*domain.Question, error)

	// HoldPending clears a stray answer from a pending question. Answered
	// questions are left untouched.
	HoldPending(ctx context.Context, id int64) error
}

// OutcomeKind classifies a finished answer generation run.
type OutcomeKind string

// Outcome kinds
const (
	OutcomeAnswered OutcomeKind = "answered"
	OutcomeSkipped  OutcomeKind = "skipped"
	OutcomeFailed   OutcomeKind = "failed"
)

// AnswerOutcome is the typed result of one answer generation run.
type AnswerOutcome struct {
	TaskID     uuid.UUID
	QuestionID int64
	Kind       OutcomeKind
	Answer     string
	Err        error
	Elapsed    time.Duration
}

// answerGenerationPayload represents the serialized data stored in the task journal
type answerGenerationPayload struct {
	QuestionID int64 `json:"question_id"`
}

// AnswerGenerationTask re-reads the question, generates an answer and
// records it. Its delay is waited out by the runner before a worker picks it
// up. It never creates a question, and a failed run leaves the question as it
// was.
type AnswerGenerationTask struct {
	id         uuid.UUID
	questionID int64
	payload    []byte
	createdAt  time.Time
	questions  QuestionService
	generator  generation.Generator
	delay      time.Duration
	logger     *slog.Logger
	metrics    *metrics.Metrics
	onOutcome  func(AnswerOutcome)

	mu      sync.Mutex
	status  TaskStatus
	outcome *AnswerOutcome
}

var (
	_ Task    = (*AnswerGenerationTask)(nil)
	_ Delayed = (*AnswerGenerationTask)(nil)
)

// NewAnswerGenerationTask creates a new answer generation task
func NewAnswerGenerationTask(
	questionID int64,
	questions QuestionService,
	generator generation.Generator,
	delay time.Duration,
	logger *slog.Logger,
) (*AnswerGenerationTask, error) {
	return newAnswerGenerationTask(uuid.New(), questionID, questions, generator, delay, logger)
}

func newAnswerGenerationTask(
	id uuid.UUID,
	questionID int64,
	questions QuestionService,
	generator generation.Generator,
	delay time.Duration,
	logger *slog.Logger,
) (*AnswerGenerationTask, error) {
	if questions == nil {
		return nil, ErrNilQuestionService
	}
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if questionID <= 0 {
		return nil, ErrInvalidQuestionID
	}
	if delay < 0 {
		delay = 0
	}

	// A struct holding one int64 always marshals.
	payload, _ := json.Marshal(answerGenerationPayload{QuestionID: questionID})

	return &AnswerGenerationTask{
		id:         id,
		questionID: questionID,
		payload:    payload,
		createdAt:  time.Now(),
		questions:  questions,
		generator:  generator,
		delay:      delay,
		logger: logger.With(
			"task_type", TaskTypeAnswerGeneration,
			"task_id", id,
			"question_id", questionID),
		status: TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *AnswerGenerationTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *AnswerGenerationTask) Type() string {
	return TaskTypeAnswerGeneration
}

// QuestionID returns the question this task answers.
func (t *AnswerGenerationTask) QuestionID() int64 {
	return t.questionID
}

// Payload returns the task data as a byte slice
func (t *AnswerGenerationTask) Payload() []byte {
	return t.payload
}

// Delay returns how long after submission the task may start.
func (t *AnswerGenerationTask) Delay() time.Duration {
	return t.delay
}

// Status returns the current task status
func (t *AnswerGenerationTask) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Outcome returns the result of the last run, or nil if the task has not finished.
func (t *AnswerGenerationTask) Outcome() *AnswerOutcome {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.outcome == nil {
		return nil
	}
	o := *t.outcome
	return &o
}

func (t *AnswerGenerationTask) setStatus(s TaskStatus) {
	t.mu.Lock()
	t.status = s
	t.mu.Unlock()
}

// Execute runs one generation attempt. It returns an error wrapping
// ErrGenerationFailed only for a failed outcome; a question deleted before
// or during the run is a silent skip. The outcome's Elapsed is measured from
// task creation, so it includes the delay.
func (t *AnswerGenerationTask) Execute(ctx context.Context) error {
	t.setStatus(TaskStatusProcessing)

	outcome := t.run(ctx)
	outcome.TaskID = t.id
	outcome.QuestionID = t.questionID
	outcome.Elapsed = time.Since(t.createdAt)

	if outcome.Kind == OutcomeFailed {
		t.holdPending(ctx)
	}

	t.mu.Lock()
	t.outcome = &outcome
	if outcome.Kind == OutcomeFailed {
		t.status = TaskStatusFailed
	} else {
		t.status = TaskStatusCompleted
	}
	t.mu.Unlock()

	t.report(outcome)
	if t.onOutcome != nil {
		t.onOutcome(outcome)
	}

	if outcome.Kind == OutcomeFailed {
		return fmt.Errorf("%w: %w", ErrGenerationFailed, outcome.Err)
	}
	return nil
}

func (t *AnswerGenerationTask) run(ctx context.Context) AnswerOutcome {
	if err := ctx.Err(); err != nil {
		return AnswerOutcome{Kind: OutcomeFailed, Err: fmt.Errorf("run interrupted: %w", err)}
	}

	question, err := t.questions.GetQuestion(ctx, t.questionID)
	if err != nil {
		if errors.Is(err, store.ErrQuestionNotFound) {
			return AnswerOutcome{Kind: OutcomeSkipped}
		}
		return AnswerOutcome{Kind: OutcomeFailed, Err: fmt.Errorf("failed to retrieve question: %w", err)}
	}

	answer, err := t.generator.GenerateAnswer(ctx, question.Text)
	if err != nil {
		return AnswerOutcome{Kind: OutcomeFailed, Err: fmt.Errorf("failed to generate answer: %w", err)}
	}

	if _, err := t.questions.RecordAnswer(ctx, t.questionID, answer); err != nil {
		if errors.Is(err, store.ErrQuestionNotFound) {
			return AnswerOutcome{Kind: OutcomeSkipped}
		}
		return AnswerOutcome{Kind: OutcomeFailed, Err: fmt.Errorf("failed to record answer: %w", err)}
	}

	return AnswerOutcome{Kind: OutcomeAnswered, Answer: answer}
}

// holdPending is best effort. The answer update is transactional, so a failed
// run cannot have left a partial write behind, and an answered question keeps
// its answer.
func (t *AnswerGenerationTask) holdPending(ctx context.Context) {
	err := t.questions.HoldPending(context.WithoutCancel(ctx), t.questionID)
	if err != nil && !errors.Is(err, store.ErrQuestionNotFound) {
		t.logger.Warn("failed to hold question at pending", "error", err)
	}
}

func (t *AnswerGenerationTask) report(o AnswerOutcome) {
	t.metrics.AnswerOutcome(string(o.Kind), o.Elapsed)

	switch o.Kind {
	case OutcomeAnswered:
		t.logger.Info("question answered", "elapsed", o.Elapsed)
	case OutcomeSkipped:
		t.logger.Debug("question no longer exists, skipping")
	case OutcomeFailed:
		t.logger.Error("answer generation failed, question left unchanged",
			"error", o.Err,
			"elapsed", o.Elapsed)
	}
}
