package task

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/docqa-api/internal/domain"
	"github.com/phrazzld/docqa-api/internal/store"
)

// mockTask implements the Task interface for testing
type mockTask struct {
	id       uuid.UUID
	taskType string
	payload  []byte
	status   TaskStatus
	delay    time.Duration
	execFn   func(ctx context.Context) error
}

func (m *mockTask) ID() uuid.UUID         { return m.id }
func (m *mockTask) Type() string          { return m.taskType }
func (m *mockTask) Payload() []byte       { return m.payload }
func (m *mockTask) Status() TaskStatus    { return m.status }
func (m *mockTask) Delay() time.Duration { return m.delay }

func (m *mockTask) Execute(ctx context.Context) error {
	if m.execFn != nil {
		return m.execFn(ctx)
	}
	return nil
}

func newMockTask() *mockTask {
	return &mockTask{
		id:       uuid.New(),
		taskType: "mock",
		payload:  []byte("test payload"),
		status:   TaskStatusPending,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// fakeQuestionService keeps questions in memory and lets tests override any call.
type fakeQuestionService struct {
	mu        sync.Mutex
	questions map[int64]*domain.Question
	holds     int

	GetFn    func(ctx context.Context, id int64) (*domain.Question, error)
	RecordFn func(ctx context.Context, id int64, answer string) (*domain.Question, error)
	HoldFn   func(ctx context.Context, id int64) error
}

func newFakeQuestionService(qs ...*domain.Question) *fakeQuestionService {
	f := &fakeQuestionService{questions: make(map[int64]*domain.Question)}
	for _, q := range qs {
		f.questions[q.ID] = q
	}
	return f
}

func answeredQuestion(id int64, text, answer string) *domain.Question {
	q := pendingQuestion(id, text)
	q.Status = domain.QuestionStatusAnswered
	q.Answer = &answer
	return q
}

func pendingQuestion(id int64, text string) *domain.Question {
	now := time.Now().UTC()
	return &domain.Question{
		ID:         id,
		DocumentID: 1,
		Text:       text,
		Status:     domain.QuestionStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (f *fakeQuestionService) GetQuestion(ctx context.Context, id int64) (*domain.Question, error) {
	if f.GetFn != nil {
		return f.GetFn(ctx, id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.questions[id]
	if !ok {
		return nil, store.ErrQuestionNotFound
	}
	cp := *q
	return &cp, nil
}

func (f *fakeQuestionService) RecordAnswer(ctx context.Context, id int64, answer string) (*domain.Question, error) {
	if f.RecordFn != nil {
		return f.RecordFn(ctx, id, answer)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.questions[id]
	if !ok {
		return nil, store.ErrQuestionNotFound
	}
	if err := q.MarkAnswered(answer); err != nil {
		return nil, err
	}
	cp := *q
	return &cp, nil
}

func (f *fakeQuestionService) HoldPending(ctx context.Context, id int64) error {
	f.mu.Lock()
	f.holds++
	f.mu.Unlock()
	if f.HoldFn != nil {
		return f.HoldFn(ctx, id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.questions[id]
	if !ok {
		return store.ErrQuestionNotFound
	}
	q.HoldPending()
	return nil
}

func (f *fakeQuestionService) delete(id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.questions, id)
}

func (f *fakeQuestionService) get(id int64) *domain.Question {
	f.mu.Lock()
	defer f.mu.Unlock()
	q := f.questions[id]
	if q == nil {
		return nil
	}
	cp := *q
	return &cp
}

func (f *fakeQuestionService) holdCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.holds
}
