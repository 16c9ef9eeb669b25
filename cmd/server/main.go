// Package main implements the entry point for the docqa API server, which
// stores documents and answers questions about them asynchronously.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/docqa-api/internal/platform/migrations"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := newRootCmd()

	// Running the binary without a subcommand starts the server.
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "docqa",
		Short:         "Async Document Q&A service",
		Long:          "Stores documents, accepts questions about them and answers each question in the background.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (default: ./config.yaml or ./config/config.yaml)")

	rootCmd.AddCommand(serveCmd(), migrateCmd())
	return rootCmd
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().IntP("port", "p", 0, "Port to listen on (overrides server.port)")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [up|down|reset|status|version]",
		Short: "Run database migrations",
		Long: "Apply or inspect the embedded schema migrations for the configured database driver.\n" +
			"Without an argument all pending migrations are applied.",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{migrations.CommandUp, migrations.CommandDown, migrations.CommandReset, migrations.CommandStatus, migrations.CommandVersion},
		RunE:      runMigrate,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, log, err := bootstrap(cmd)
	if err != nil {
		return err
	}

	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Server.Port = port
	}
	if noMigrate, _ := cmd.Flags().GetBool("no-migrate"); noMigrate {
		cfg.Database.AutoMigrate = false
	}

	db, err := setupAppDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}

	if cfg.Database.AutoMigrate {
		if err := migrations.Up(ctx, db, cfg.Database.Driver, log); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	app, err := newApplication(cfg, log, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	command := migrations.CommandUp
	if len(args) == 1 {
		command = args[0]
	}

	cfg, log, err := bootstrap(cmd)
	if err != nil {
		return err
	}

	db, err := setupAppDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("error closing database connection", "error", err)
		}
	}()

	return migrations.Run(ctx, db, cfg.Database.Driver, command, log)
}
