package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/docqa-api/internal/config"
	"github.com/phrazzld/docqa-api/internal/platform/logger"
	"github.com/spf13/cobra"
)

// bootstrap loads the configuration named by the --config flag and sets up
// the default logger from it.
func bootstrap(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := loadAppConfig(path)
	if err != nil {
		return nil, nil, err
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database_driver", cfg.Database.Driver,
		"durable_tasks", cfg.Task.Durable,
		"generation_delay", cfg.Generation.Delay)
	return cfg, log, nil
}

// loadAppConfig loads the application configuration from environment
// variables and the optional config file.
func loadAppConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}
