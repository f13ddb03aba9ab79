package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/liftsplit/liftsplit/internal/app/migrate"
	"github.com/liftsplit/liftsplit/pkg/config"
	"github.com/liftsplit/liftsplit/pkg/logger"
)

// NewUpCmd creates the up subcommand.
func NewUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRunner(cmd.Context(), func(ctx context.Context, r migrate.Runner) error {
				if err := r.Ensure(ctx); err != nil {
					return oops.Code("MIGRATION_FAILED").With("operation", "up").Wrap(err)
				}
				cmd.Println("Migrations applied")
				return nil
			})
		},
	}
}

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRunner(cmd.Context(), func(ctx context.Context, r migrate.Runner) error {
				if err := r.Status(ctx); err != nil {
					return oops.Code("MIGRATION_FAILED").With("operation", "status").Wrap(err)
				}
				return nil
			})
		},
	}
}

// NewDownCmd creates the down subcommand.
func NewDownCmd() *cobra.Command {
	var target int64
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migration, or down to --target",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRunner(cmd.Context(), func(ctx context.Context, r migrate.Runner) error {
				if err := r.Down(ctx, target); err != nil {
					return oops.Code("MIGRATION_FAILED").With("operation", "down").With("target", target).Wrap(err)
				}
				cmd.Println("Rollback complete")
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&target, "target", 0, "version to roll back to (default: previous version)")
	return cmd
}

func withRunner(parent context.Context, fn func(context.Context, migrate.Runner) error) error {
	cfg, err := config.LoadMigrateConfig()
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}
	log := logger.New("migrate", config.ParseLevel(cfg.LogLevel))

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	runner, err := migrate.New(pool, cfg.DatabaseURL, log)
	if err != nil {
		pool.Close()
		return oops.Code("MIGRATION_SETUP_FAILED").Wrap(err)
	}
	defer runner.Close()

	if err := runner.Ping(ctx); err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "ping database").Wrap(err)
	}
	return fn(ctx, runner)
}
