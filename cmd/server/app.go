package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	apiMiddleware "github.com/phrazzld/docqa-api/internal/api/middleware"
	"github.com/phrazzld/docqa-api/internal/config"
	"github.com/phrazzld/docqa-api/internal/generation"
	"github.com/phrazzld/docqa-api/internal/metrics"
	"github.com/phrazzld/docqa-api/internal/service"
	"github.com/phrazzld/docqa-api/internal/task"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// application holds all the components of the running service.
type application struct {
	config   *config.Config
	logger   *slog.Logger
	db       *sql.DB
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	documentService service.DocumentService
	questionService service.QuestionService
	taskRunner      *task.TaskRunner
	questionLimiter *apiMiddleware.RateLimiter
}

// newApplication wires stores, services and the task runtime over db.
// The task runner is created but not started.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	stores, err := setupStores(cfg, db, logger)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	if err := registry.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("failed to register go collector: %w", err)
	}
	if err := registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, fmt.Errorf("failed to register process collector: %w", err)
	}

	m := metrics.New()
	if err := m.RegisterCollectors(registry); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	runner := task.NewTaskRunner(stores.tasks, task.TaskRunnerConfig{
		WorkerCount:            cfg.Task.WorkerCount,
		QueueSize:              cfg.Task.QueueSize,
		Durable:                cfg.Task.Durable,
		StuckTaskAge:           cfg.Task.StuckTaskAge,
		StuckTaskCheckInterval: cfg.Task.StuckTaskCheckInterval,
	}, logger)
	runner.SetMetrics(m)
	if err := metrics.RegisterQueueDepth(registry, runner.QueueDepth); err != nil {
		return nil, fmt.Errorf("failed to register queue depth gauge: %w", err)
	}

	factory := task.NewAnswerGenerationTaskFactory(nil, generation.NewMockGenerator(), cfg.Generation.Delay, logger)
	factory.SetMetrics(m)
	runner.RegisterDecoder(task.TaskTypeAnswerGeneration, factory.Decode)

	documentService, err := service.NewDocumentService(db, stores.documents, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create document service: %w", err)
	}

	questionService, err := service.NewQuestionService(service.QuestionServiceDeps{
		DB:        db,
		Documents: stores.documents,
		Questions: stores.questions,
		Factory:   factory,
		Runner:    runner,
		Metrics:   m,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create question service: %w", err)
	}
	// Tasks read and write through the service that creates them.
	factory.SetQuestionService(questionService)

	var limiter *apiMiddleware.RateLimiter
	if cfg.Server.QuestionRateLimit > 0 {
		limiter = apiMiddleware.NewRateLimiter(cfg.Server.QuestionRateLimit, cfg.Server.QuestionRateBurst, m)
		logger.Info("question rate limiting enabled",
			"rate", cfg.Server.QuestionRateLimit,
			"burst", cfg.Server.QuestionRateBurst)
	}

	return &application{
		config:          cfg,
		logger:          logger,
		db:              db,
		registry:        registry,
		metrics:         m,
		documentService: documentService,
		questionService: questionService,
		taskRunner:      runner,
		questionLimiter: limiter,
	}, nil
}

// Run starts the background workers and serves HTTP until ctx is cancelled.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	if err := app.taskRunner.Start(); err != nil {
		return fmt.Errorf("failed to start task runner: %w", err)
	}

	return app.serve(ctx, app.setupRouter())
}

// cleanup releases resources in dependency order: workers first so no task
// touches a closed database.
func (app *application) cleanup() {
	app.taskRunner.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database connection", "error", err)
	} else {
		app.logger.Info("database connection closed")
	}
}
