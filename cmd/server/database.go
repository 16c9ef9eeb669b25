package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/docqa-api/internal/config"
	"github.com/phrazzld/docqa-api/internal/platform/postgres"
	"github.com/phrazzld/docqa-api/internal/platform/sqlite"
	"github.com/phrazzld/docqa-api/internal/store"
	"github.com/phrazzld/docqa-api/internal/task"
)

// setupAppDatabase opens and pings the configured database.
func setupAppDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err = postgres.Open(ctx, cfg.Database, logger)
	case config.DriverSQLite:
		db, err = sqlite.Open(ctx, cfg.Database, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// appStores groups the record stores of one driver.
type appStores struct {
	documents store.DocumentStore
	questions store.QuestionStore
	tasks     task.TaskStore
}

// setupStores creates the stores for the configured driver. The SQL task
// journal is only used when durable tasks are enabled.
func setupStores(cfg *config.Config, db *sql.DB, logger *slog.Logger) (appStores, error) {
	var s appStores

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		s.documents = postgres.NewPostgresDocumentStore(db, logger)
		s.questions = postgres.NewPostgresQuestionStore(db, logger)
		if cfg.Task.Durable {
			s.tasks = postgres.NewPostgresTaskStore(db, logger)
		}
	case config.DriverSQLite:
		s.documents = sqlite.NewDocumentStore(db, logger)
		s.questions = sqlite.NewQuestionStore(db, logger)
		if cfg.Task.Durable {
			s.tasks = sqlite.NewTaskStore(db, logger)
		}
	default:
		return appStores{}, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	if s.tasks == nil {
		s.tasks = task.NewMemoryTaskStore()
	}
	return s, nil
}
