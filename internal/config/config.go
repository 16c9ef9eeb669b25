package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Task       TaskConfig       `mapstructure:"task" validate:"required"`
	Generation GenerationConfig `mapstructure:"generation" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	Host            string        `mapstructure:"host"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`

	// CORSAllowedOrigins lists origins allowed by the CORS middleware. "*" allows all.
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`

	// QuestionRateLimit is the sustained number of question submissions per
	// second allowed per client IP. Zero disables limiting.
	QuestionRateLimit float64 `mapstructure:"question_rate_limit" validate:"gte=0"`
	QuestionRateBurst int     `mapstructure:"question_rate_burst" validate:"gte=0"`
}

// Database drivers understood by the server.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	URL             string        `mapstructure:"url" validate:"required"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// TaskConfig controls the background answer-generation runtime.
type TaskConfig struct {
	WorkerCount int `mapstructure:"worker_count" validate:"required,gt=0"`
	QueueSize   int `mapstructure:"queue_size" validate:"required,gt=0"`

	// Durable switches the task journal from memory to the tasks table and
	// enables recovery of unfinished tasks on start.
	Durable                bool          `mapstructure:"durable"`
	StuckTaskAge           time.Duration `mapstructure:"stuck_task_age" validate:"gt=0"`
	StuckTaskCheckInterval time.Duration `mapstructure:"stuck_task_check_interval" validate:"gt=0"`
}

// GenerationConfig configures the simulated answer generator.
type GenerationConfig struct {
	Delay time.Duration `mapstructure:"delay" validate:"gte=0"`
}

// Address returns the host:port the HTTP server listens on.
func (c ServerConfig) Address() string {
	return joinHostPort(c.Host, c.Port)
}
