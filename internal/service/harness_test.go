package service_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/phrazzld/docqa-api/internal/generation"
	"github.com/phrazzld/docqa-api/internal/metrics"
	"github.com/phrazzld/docqa-api/internal/service"
	"github.com/phrazzld/docqa-api/internal/task"
	"github.com/phrazzld/docqa-api/internal/testutils"
	"github.com/stretchr/testify/require"
)

const testDelay = 10 * time.Millisecond

// harness wires the services to a real SQLite database and a running task runner.
type harness struct {
	db        *sql.DB
	stores    testutils.TestStores
	documents service.DocumentService
	questions service.QuestionService
	runner    *task.TaskRunner
	factory   *task.AnswerGenerationTaskFactory
	metrics   *metrics.Metrics
	outcomes  chan task.AnswerOutcome
}

type harnessOption func(*harnessConfig)

type harnessConfig struct {
	generator generation.Generator
	delay     time.Duration
	workers   int
	queueSize int
	submitter task.Submitter
}

func withGenerator(g generation.Generator) harnessOption {
	return func(c *harnessConfig) { c.generator = g }
}

func withDelay(d time.Duration) harnessOption {
	return func(c *harnessConfig) { c.delay = d }
}

func withWorkers(n int) harnessOption {
	return func(c *harnessConfig) { c.workers = n }
}

func withQueueSize(n int) harnessOption {
	return func(c *harnessConfig) { c.queueSize = n }
}

func withSubmitter(s task.Submitter) harnessOption {
	return func(c *harnessConfig) { c.submitter = s }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()

	cfg := harnessConfig{
		generator: generation.NewMockGenerator(),
		delay:     testDelay,
		workers:   4,
		queueSize: 100,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	logger := testutils.DiscardLogger()
	db := testutils.OpenSQLite(t)
	stores := testutils.CreateTestStores(db)
	m := metrics.New()

	runner := task.NewTaskRunner(task.NewMemoryTaskStore(), task.TaskRunnerConfig{
		WorkerCount: cfg.workers,
		QueueSize:   cfg.queueSize,
	}, logger)
	runner.SetMetrics(m)

	outcomes := make(chan task.AnswerOutcome, 128)
	factory := task.NewAnswerGenerationTaskFactory(nil, cfg.generator, cfg.delay, logger)
	factory.SetMetrics(m)
	factory.OnOutcome(func(o task.AnswerOutcome) { outcomes <- o })

	submitter := cfg.submitter
	if submitter == nil {
		submitter = runner
	}

	documents, err := service.NewDocumentService(db, stores.Documents, logger)
	require.NoError(t, err)
	questions, err := service.NewQuestionService(service.QuestionServiceDeps{
		DB:        db,
		Documents: stores.Documents,
		Questions: stores.Questions,
		Factory:   factory,
		Runner:    submitter,
		Metrics:   m,
		Logger:    logger,
	})
	require.NoError(t, err)
	factory.SetQuestionService(questions)

	require.NoError(t, runner.Start())
	t.Cleanup(runner.Stop)

	return &harness{
		db:        db,
		stores:    stores,
		documents: documents,
		questions: questions,
		runner:    runner,
		factory:   factory,
		metrics:   m,
		outcomes:  outcomes,
	}
}

func (h *harness) createDocument(t *testing.T) int64 {
	t.Helper()
	doc, err := h.documents.CreateDocument(context.Background(), "Doc", "Content")
	require.NoError(t, err)
	return doc.ID
}

// awaitOutcome waits for the next answer generation outcome.
func (h *harness) awaitOutcome(t *testing.T) task.AnswerOutcome {
	t.Helper()
	select {
	case o := <-h.outcomes:
		return o
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for answer generation outcome")
		return task.AnswerOutcome{}
	}
}
