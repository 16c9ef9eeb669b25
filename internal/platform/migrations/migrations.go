// Package migrations embeds the SQL schema for every supported database and
// applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/docqa-api/internal/config"
	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var embedded embed.FS

// Commands understood by Run.
const (
	CommandUp      = "up"
	CommandDown    = "down"
	CommandReset   = "reset"
	CommandStatus  = "status"
	CommandVersion = "version"
)

// ErrUnknownCommand is returned by Run for an unsupported command.
var ErrUnknownCommand = errors.New("unknown migration command")

// Source returns the migration files for driver.
func Source(driver string) (fs.FS, error) {
	switch driver {
	case config.DriverPostgres, config.DriverSQLite:
		return fs.Sub(embedded, driver)
	default:
		return nil, fmt.Errorf("no migrations for database driver %q", driver)
	}
}

func dialect(driver string) (goose.Dialect, error) {
	switch driver {
	case config.DriverPostgres:
		return goose.DialectPostgres, nil
	case config.DriverSQLite:
		return goose.DialectSQLite3, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// NewProvider builds a goose provider over the embedded migrations for driver.
func NewProvider(db *sql.DB, driver string) (*goose.Provider, error) {
	d, err := dialect(driver)
	if err != nil {
		return nil, err
	}
	fsys, err := Source(driver)
	if err != nil {
		return nil, err
	}
	provider, err := goose.NewProvider(d, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return provider, nil
}

// Up applies every pending migration.
func Up(ctx context.Context, db *sql.DB, driver string, logger *slog.Logger) error {
	return Run(ctx, db, driver, CommandUp, logger)
}

// Run executes a migration command against db.
func Run(ctx context.Context, db *sql.DB, driver, command string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	// A correlation ID ties together every log line of one migration run.
	log := logger.With(
		"component", "migrations",
		"correlation_id", uuid.New().String(),
		"command", command,
		"driver", driver,
	)

	provider, err := NewProvider(db, driver)
	if err != nil {
		return err
	}

	started := time.Now()
	before, err := provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read current migration version: %w", err)
	}

	switch command {
	case CommandUp:
		results, err := provider.Up(ctx)
		logResults(log, results)
		if err != nil {
			return fmt.Errorf("migration command '%s' failed: %w", command, err)
		}
	case CommandDown:
		result, err := provider.Down(ctx)
		if result != nil {
			logResults(log, []*goose.MigrationResult{result})
		}
		if err != nil && !errors.Is(err, goose.ErrNoNextVersion) {
			return fmt.Errorf("migration command '%s' failed: %w", command, err)
		}
	case CommandReset:
		results, err := provider.DownTo(ctx, 0)
		logResults(log, results)
		if err != nil {
			return fmt.Errorf("migration command '%s' failed: %w", command, err)
		}
	case CommandStatus:
		statuses, err := provider.Status(ctx)
		if err != nil {
			return fmt.Errorf("migration command '%s' failed: %w", command, err)
		}
		for _, s := range statuses {
			log.Info("migration status",
				"version", s.Source.Version,
				"path", s.Source.Path,
				"state", string(s.State),
				"applied_at", s.AppliedAt)
		}
	case CommandVersion:
		log.Info("current migration version", "version", before)
		return nil
	default:
		return fmt.Errorf("%w: %s (expected up, down, reset, status, or version)", ErrUnknownCommand, command)
	}

	after, err := provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}
	log.Info("migration command completed",
		"previous_version", before,
		"new_version", after,
		"duration_ms", time.Since(started).Milliseconds())
	return nil
}

func logResults(log *slog.Logger, results []*goose.MigrationResult) {
	for _, r := range results {
		if r == nil || r.Source == nil {
			continue
		}
		log.Info("applied migration",
			"version", r.Source.Version,
			"path", r.Source.Path,
			"direction", r.Direction,
			"duration_ms", r.Duration.Milliseconds())
	}
}
