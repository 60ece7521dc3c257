package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/workboard-api/internal/store"
)

// SQLSTATE codes the stores translate.
const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	notNullViolationCode    = "23502"

	// raiseExceptionCode is raised by the audit_entries_guard trigger.
	raiseExceptionCode = "P0001"
)

// constraintErrors names the constraints whose violation has a dedicated
// store sentinel.
var constraintErrors = map[string]error{
	taskCodeConstraint: store.ErrTaskCodeExists,
}

// MapError translates a database error into the store error taxonomy,
// keeping the original error in the chain. Errors without a mapping are
// returned unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	if specific, ok := constraintErrors[pgErr.ConstraintName]; ok {
		return fmt.Errorf("%w: %w", specific, err)
	}

	switch pgErr.Code {
	case uniqueViolationCode:
		return fmt.Errorf("%w: %w", store.ErrDuplicate, err)
	case foreignKeyViolationCode, checkViolationCode:
		return fmt.Errorf("%w: constraint %s: %w", store.ErrInvalidEntity, pgErr.ConstraintName, err)
	case notNullViolationCode:
		return fmt.Errorf("%w: column %s is required: %w", store.ErrInvalidEntity, pgErr.ColumnName, err)
	case raiseExceptionCode:
		return fmt.Errorf("%w: %s: %w", store.ErrInvalidEntity, pgErr.Message, err)
	}
	return err
}

// CheckRowsAffected returns notFound when an UPDATE or DELETE touched no row.
func CheckRowsAffected(result sql.Result, notFound error) error {
	if result == nil {
		return fmt.Errorf("nil result provided to CheckRowsAffected")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		if notFound == nil {
			return store.ErrNotFound
		}
		return notFound
	}
	return nil
}
