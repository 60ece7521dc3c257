// Package store provides abstractions and implementations for data persistence
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/workboard-api/internal/platform/logger"
)

// TxFn is the body of a transaction.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// RunInTransaction runs fn inside a transaction on db. The transaction
// commits when fn returns nil and rolls back otherwise, including when fn
// panics; the panic is re-raised after the rollback. Begin, commit and
// rollback failures wrap ErrTransactionFailed.
func RunInTransaction(ctx context.Context, db *sql.DB, fn TxFn) error {
	log := logger.FromContext(ctx)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", slog.String("error", err.Error()))
		return fmt.Errorf("%w: begin: %w", ErrTransactionFailed, err)
	}

	defer func() {
		p := recover()
		if p == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("failed to roll back transaction after panic",
				slog.String("error", rbErr.Error()),
				slog.Any("panic", p))
		}
		// ALLOW-PANIC: re-raised after rollback
		panic(p)
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("failed to roll back transaction",
				slog.String("rollback_error", rbErr.Error()),
				slog.String("original_error", err.Error()))
			return errors.Join(err, fmt.Errorf("%w: rollback: %w", ErrTransactionFailed, rbErr))
		}
		log.Debug("transaction rolled back", slog.String("error", err.Error()))
		return err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit transaction", slog.String("error", err.Error()))
		return fmt.Errorf("%w: commit: %w", ErrTransactionFailed, err)
	}
	return nil
}

// Repositories groups the stores that take part in a task mutation.
type Repositories struct {
	Tasks TaskStore
	Audit AuditStore
}

// Transactor runs a unit of work against Repositories bound to one transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// SQLTransactor implements Transactor on top of RunInTransaction.
type SQLTransactor struct {
	db    *sql.DB
	repos Repositories
}

// NewSQLTransactor creates a Transactor whose repositories are rebound to
// each transaction via their WithTx methods.
func NewSQLTransactor(db *sql.DB, repos Repositories) *SQLTransactor {
	return &SQLTransactor{db: db, repos: repos}
}

// WithinTx implements Transactor.
func (t *SQLTransactor) WithinTx(
	ctx context.Context,
	fn func(ctx context.Context, repos Repositories) error,
) error {
	return RunInTransaction(ctx, t.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, Repositories{
			Tasks: t.repos.Tasks.WithTx(tx),
			Audit: t.repos.Audit.WithTx(tx),
		})
	})
}
