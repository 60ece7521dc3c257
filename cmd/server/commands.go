package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/workboard-api/internal/config"
	"github.com/phrazzld/workboard-api/internal/notify"
	"github.com/phrazzld/workboard-api/internal/platform/logger"
	"github.com/phrazzld/workboard-api/internal/platform/postgres"
	"github.com/phrazzld/workboard-api/internal/service/auth"
	"github.com/spf13/cobra"
)

// loadConfig is replaced in tests.
var loadConfig = config.Load

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "workboard",
		Short:         "Task lifecycle audit and notification server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newReportCmd(),
		newIssuePasswordCmd(),
	)
	return root
}

// env is what every command needs before doing its own work.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *sql.DB
}

// bootstrap loads configuration, sets up logging and opens the database.
func bootstrap(ctx context.Context) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	db, err := setupAppDatabase(ctx, cfg, l)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: l, db: db}, nil
}

func (e *env) close() {
	if err := e.db.Close(); err != nil {
		e.logger.Error("error closing database connection", slog.String("error", err.Error()))
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the report scheduler and the notification workers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			app, err := newApplication(e.cfg, e.logger, e.db)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return app.Run(ctx)
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status|version]",
		Short:     "Run database migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{postgres.MigrateUp, postgres.MigrateDown, postgres.MigrateStatus, postgres.MigrateVersion},
		RunE: func(cmd *cobra.Command, args []string) error {
			command := postgres.MigrateUp
			if len(args) == 1 {
				command = args[0]
			}
			ctx := cmd.Context()
			e, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			start := time.Now()
			if err := postgres.Migrate(ctx, e.db, command, e.logger); err != nil {
				return err
			}
			e.logger.Info("migration command completed",
				slog.String("command", command),
				slog.Duration("elapsed", time.Since(start)))
			return nil
		},
	}
}

func newReportCmd() *cobra.Command {
	var recipients []string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Aggregate the task set and send the report now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			app, err := newApplication(e.cfg, e.logger, e.db)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			result, err := app.reports.RunNow(ctx, recipients)
			if err != nil {
				return err
			}
			for _, d := range result.Deliveries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tsent=%t\n", d.Recipient, d.Outcome.Sent)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "report %s: %d of %d delivered\n",
				result.Fingerprint, result.Sent(), len(result.Deliveries))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&recipients, "to", nil, "Send to these addresses instead of the configured recipients")
	return cmd
}

func newIssuePasswordCmd() *cobra.Command {
	var length int
	cmd := &cobra.Command{
		Use:   "issue-password <name> <email>",
		Short: "Issue a temporary password, email it and print its bcrypt hash",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, email := strings.TrimSpace(args[0]), strings.TrimSpace(args[1])
			password, err := auth.GenerateTemporaryPassword(length)
			if err != nil {
				return err
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			e, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			app, err := newApplication(e.cfg, e.logger, e.db)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			out := app.dispatcher.Dispatch(ctx, notify.KindPasswordIssued, notify.PasswordPayload{
				Name:     name,
				Email:    email,
				Password: password,
			}, notify.ToAddress(email))
			if !out.Sent {
				e.logger.Warn("temporary password was not emailed", slog.String("to", email))
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().IntVar(&length, "length", auth.TemporaryPasswordLength, "Password length")
	return cmd
}
