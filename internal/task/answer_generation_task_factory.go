package task

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/docqa-api/internal/generation"
	"github.com/phrazzld/docqa-api/internal/metrics"
)

// AnswerGenerationTaskFactory creates AnswerGenerationTask instances
type AnswerGenerationTaskFactory struct {
	questions QuestionService
	generator generation.Generator
	delay     time.Duration
	logger    *slog.Logger
	metrics   *metrics.Metrics
	onOutcome func(AnswerOutcome)
}

// NewAnswerGenerationTaskFactory creates a new factory for AnswerGenerationTasks
func NewAnswerGenerationTaskFactory(
	questions QuestionService,
	generator generation.Generator,
	delay time.Duration,
	logger *slog.Logger,
) *AnswerGenerationTaskFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnswerGenerationTaskFactory{
		questions: questions,
		generator: generator,
		delay:     delay,
		logger:    logger.With("component", "answer_generator"),
	}
}

// SetMetrics attaches instrumentation to every task created afterwards.
func (f *AnswerGenerationTaskFactory) SetMetrics(m *metrics.Metrics) {
	f.metrics = m
}

// OnOutcome registers fn to be called with the outcome of every run.
func (f *AnswerGenerationTaskFactory) OnOutcome(fn func(AnswerOutcome)) {
	f.onOutcome = fn
}

// SetQuestionService sets the service the tasks read and write through.
// It exists because the question service itself holds the factory.
func (f *AnswerGenerationTaskFactory) SetQuestionService(questions QuestionService) {
	f.questions = questions
}

// CreateTask creates a new AnswerGenerationTask for the specified question
func (f *AnswerGenerationTaskFactory) CreateTask(questionID int64) (Task, error) {
	return f.build(uuid.New(), questionID)
}

// Decode rebuilds a task from its journal payload, keeping the original ID.
// It satisfies Decoder.
func (f *AnswerGenerationTaskFactory) Decode(id uuid.UUID, payload []byte) (Task, error) {
	var p answerGenerationPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("invalid %s payload: %w", TaskTypeAnswerGeneration, err)
	}
	return f.build(id, p.QuestionID)
}

func (f *AnswerGenerationTaskFactory) build(id uuid.UUID, questionID int64) (Task, error) {
	t, err := newAnswerGenerationTask(id, questionID, f.questions, f.generator, f.delay, f.logger)
	if err != nil {
		return nil, err
	}
	t.metrics = f.metrics
	t.onOutcome = f.onOutcome
	return t, nil
}
