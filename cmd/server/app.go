package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/phrazzld/workboard-api/internal/audit"
	"github.com/phrazzld/workboard-api/internal/config"
	"github.com/phrazzld/workboard-api/internal/notify"
	"github.com/phrazzld/workboard-api/internal/platform/mailer"
	"github.com/phrazzld/workboard-api/internal/platform/postgres"
	"github.com/phrazzld/workboard-api/internal/report"
	"github.com/phrazzld/workboard-api/internal/sequence"
	"github.com/phrazzld/workboard-api/internal/service"
	"github.com/phrazzld/workboard-api/internal/service/auth"
	"github.com/phrazzld/workboard-api/internal/store"
	"github.com/phrazzld/workboard-api/internal/worker"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	taskStore      store.TaskStore
	auditStore     store.AuditStore
	directoryStore *postgres.PostgresDirectoryStore

	jwtService auth.JWTService
	dispatcher *notify.Dispatcher
	reports    *report.Service
	lifecycle  service.LifecycleService

	// queue and pool are nil unless notifications are dispatched asynchronously.
	queue *worker.Queue
	pool  *worker.Pool

	// failedDeliveries counts async notification jobs that could not record
	// their delivery outcome.
	failedDeliveries atomic.Int64
}

// newApplication creates a new application instance with all dependencies initialized.
// Worker goroutines are not started until Run.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	app.auditStore = postgres.NewPostgresAuditStore(db, logger)
	app.directoryStore = postgres.NewPostgresDirectoryStore(db, logger)
	counters := postgres.NewPostgresCounterStore(db, logger)

	loc, err := time.LoadLocation(cfg.Report.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load report timezone: %w", err)
	}

	renderer, err := notify.NewTemplateRenderer(notify.RendererConfig{
		BaseURL:    cfg.Notify.BaseURL,
		DateLayout: cfg.Notify.DateLayout,
		Language:   cfg.Notify.Language,
		Location:   loc,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize renderer: %w", err)
	}

	app.dispatcher, err = notify.NewDispatcher(
		mailSettingsSource(cfg.Mail, app.directoryStore, logger),
		renderer,
		mailer.NewSMTPSender(cfg.Mail.Timeout, logger),
		cfg.Mail.Timeout,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize dispatcher: %w", err)
	}

	app.reports, err = report.NewService(app.taskStore, app.directoryStore, app.dispatcher, report.Options{
		Recipient:   cfg.Report.Recipient,
		SendToAll:   cfg.Report.SendToAll,
		Location:    loc,
		Concurrency: cfg.Report.Concurrency,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create report service: %w", err)
	}

	auditLog, err := audit.NewLog(app.auditStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit log: %w", err)
	}
	codes, err := sequence.NewGenerator(counters, cfg.Notify.CodePrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to create sequence generator: %w", err)
	}

	deps := service.LifecycleDeps{
		Tasks: app.taskStore,
		Transactor: store.NewSQLTransactor(db, store.Repositories{
			Tasks: app.taskStore,
			Audit: app.auditStore,
		}),
		Audit:     auditLog,
		Codes:     codes,
		Directory: app.directoryStore,
		Notifier:  app.dispatcher,
		Reports:   app.reports,
	}
	if cfg.Notify.Async {
		app.queue = worker.NewQueue(cfg.Notify.QueueSize, logger)
		app.pool = worker.NewPool(app.queue, worker.PoolConfig{
			WorkerCount: cfg.Notify.WorkerCount,
			JobTimeout:  2 * cfg.Mail.Timeout,
		}, logger)
		app.pool.SetErrorHandler(func(job worker.Job, err error) {
			n := app.failedDeliveries.Add(1)
			app.logger.Warn("notification outcome not recorded",
				slog.String("job", job.Name()),
				slog.Int64("failed_total", n))
		})
		deps.Queue = app.queue
	}

	app.lifecycle, err = service.NewLifecycleService(deps, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create lifecycle service: %w", err)
	}

	logger.Info("application initialized",
		slog.Bool("static_mail_settings", cfg.Mail.Host != ""),
		slog.Bool("async_notifications", cfg.Notify.Async),
		slog.Bool("report_enabled", cfg.Report.Enabled))
	return app, nil
}

// mailSettingsSource prefers static settings from configuration and falls
// back to the settings row in the database.
func mailSettingsSource(cfg config.MailConfig, db notify.SettingsSource, logger *slog.Logger) notify.SettingsSource {
	if cfg.Host != "" {
		logger.Debug("using mail settings from configuration")
		return notify.SettingsFromConfig(cfg)
	}
	return db
}
