// Package cli implements the sari command line: serving the data service,
// running migrations and seeders, and running the background worker.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/sari-pos/sari/internal/app"
	"github.com/sari-pos/sari/internal/migration"
	"github.com/sari-pos/sari/internal/seeder"
)

const stopTimeout = 10 * time.Second

// NewRootCommand builds the root sari CLI command.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "sari",
		Short: "Point-of-sale data service toolkit",
	}

	root.AddCommand(
		newStartCmd(),
		newMigrateCmd(),
		newSeedCmd(),
		newWorkerCmd(),
	)

	return root
}

// Execute runs the sari CLI.
func Execute() error {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return err
	}
	return nil
}

func newStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "start",
		Aliases: []string{"run"},
		Short:   "Run the POS data service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBlocking(cmd.Context(), app.Module)
		},
	}
}

func newWorkerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Manage background workers",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Run the worker engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBlocking(cmd.Context(), app.Worker)
		},
	})
	return cmd
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			var mig *migration.Migrator
			return runOneShot(cmd.Context(), fx.Populate(&mig), migration.Module, func(ctx context.Context) error {
				if err := mig.Up(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			})
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			all, _ := cmd.Flags().GetBool("all")
			var mig *migration.Migrator
			return runOneShot(cmd.Context(), fx.Populate(&mig), migration.Module, func(ctx context.Context) error {
				if err := mig.Down(ctx, steps, all); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations rolled back")
				return nil
			})
		},
	}
	downCmd.Flags().Int("steps", 1, "Number of migration steps to rollback")
	downCmd.Flags().Bool("all", false, "Rollback all applied migrations")

	cmd.AddCommand(upCmd, downCmd)
	return cmd
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed sample catalog and ledger data",
		RunE: func(cmd *cobra.Command, args []string) error {
			var seed *seeder.Seeder
			return runOneShot(cmd.Context(), fx.Populate(&seed), seeder.Module, func(ctx context.Context) error {
				if err := seed.Products(ctx); err != nil {
					return err
				}
				if err := seed.Orders(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "seed data applied")
				return nil
			})
		},
	}
}

// runBlocking starts the given application wiring and blocks until the
// command context is cancelled.
func runBlocking(ctx context.Context, opts fx.Option) error {
	application := fx.New(opts)
	if err := application.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return application.Stop(stopCtx)
}

// runOneShot spins up the core wiring plus extras, runs fn, and tears the
// application down again.
func runOneShot(ctx context.Context, populate fx.Option, extra fx.Option, fn func(context.Context) error) error {
	application := fx.New(app.Core, extra, populate, fx.NopLogger)
	if err := application.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()
		_ = application.Stop(stopCtx)
	}()

	return fn(ctx)
}
