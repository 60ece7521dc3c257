package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/workboard-api/internal/report"
	"golang.org/x/sync/errgroup"
)

// shutdownTimeout bounds draining the HTTP server and the notification workers.
const shutdownTimeout = 10 * time.Second

// Run serves HTTP, runs the report scheduler and the notification workers
// until ctx is cancelled, then shuts everything down.
func (app *application) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           app.setupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var scheduler *report.Scheduler
	if app.config.Report.Enabled {
		var err error
		scheduler, err = report.NewScheduler(app.reports, app.config.Report.Interval, app.logger)
		if err != nil {
			return fmt.Errorf("failed to create report scheduler: %w", err)
		}
	}

	if app.pool != nil {
		app.pool.Start()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.logger.Info("starting server", slog.Int("port", app.config.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	if scheduler != nil {
		g.Go(func() error {
			return scheduler.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		app.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		if err := server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown failed: %w", err))
		}
		if err := app.drainWorkers(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	})

	err := g.Wait()
	if err != nil {
		app.logger.Error("server stopped with error", slog.String("error", err.Error()))
		return err
	}
	app.logger.Info("server shutdown completed")
	return nil
}

// drainWorkers closes the notification queue and waits for queued
// deliveries to finish.
func (app *application) drainWorkers(ctx context.Context) error {
	if app.queue == nil {
		return nil
	}
	app.queue.Close()
	if err := app.pool.Wait(ctx); err != nil {
		return fmt.Errorf("notification workers did not drain: %w", err)
	}
	if n := app.failedDeliveries.Load(); n > 0 {
		app.logger.Warn("some notification outcomes were not recorded", slog.Int64("failed", n))
	}
	return nil
}
