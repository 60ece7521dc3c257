package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/workboard-api/internal/domain"
	"github.com/phrazzld/workboard-api/internal/platform/logger"
	"github.com/phrazzld/workboard-api/internal/store"
)

// PostgresAuditStore implements the store.AuditStore interface
// using a PostgreSQL database as the storage backend.
type PostgresAuditStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAuditStore creates a new PostgreSQL implementation of the AuditStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresAuditStore(db store.DBTX, logger *slog.Logger) *PostgresAuditStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresAuditStore{
		db:     db,
		logger: logger.With(slog.String("component", "audit_store")),
	}
}

// Ensure PostgresAuditStore implements store.AuditStore interface
var _ store.AuditStore = (*PostgresAuditStore)(nil)

// Append implements store.AuditStore.Append
func (s *PostgresAuditStore) Append(ctx context.Context, entry *domain.AuditEntry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := entry.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	changes, err := json.Marshal(entry.Changes)
	if err != nil {
		return fmt.Errorf("%w: failed to encode changes: %w", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO audit_entries
			(id, task_id, action, changes, actor, notification_sent, notified_to, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = s.db.ExecContext(ctx, query,
		entry.ID,
		entry.TaskID,
		string(entry.Action),
		string(changes),
		entry.Actor,
		entry.NotificationSent,
		nullString(entry.NotifiedTo),
		entry.CreatedAt,
	)
	if err != nil {
		log.Error("failed to append audit entry",
			slog.String("error", err.Error()),
			slog.String("task_id", entry.TaskID.String()),
			slog.String("action", string(entry.Action)))
		return store.NewStoreError("audit_entry", "append", "insert failed", MapError(err))
	}
	return nil
}

// SetDeliveryOutcome implements store.AuditStore.SetDeliveryOutcome
func (s *PostgresAuditStore) SetDeliveryOutcome(ctx context.Context, id uuid.UUID, sent bool, target string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`UPDATE audit_entries SET notification_sent = $2, notified_to = $3 WHERE id = $1`,
		id, sent, nullString(target))
	if err != nil {
		log.Error("failed to set delivery outcome",
			slog.String("error", err.Error()),
			slog.String("entry_id", id.String()))
		return store.NewStoreError("audit_entry", "set_delivery_outcome", "update failed", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrAuditEntryNotFound)
}

// ListByTask implements store.AuditStore.ListByTask
func (s *PostgresAuditStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.AuditEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, task_id, action, changes, actor, notification_sent, notified_to, created_at
		FROM audit_entries
		WHERE task_id = $1
		ORDER BY seq DESC
	`
	rows, err := s.db.QueryContext(ctx, query, taskID)
	if err != nil {
		log.Error("failed to list audit entries",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, store.NewStoreError("audit_entry", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	entries := []*domain.AuditEntry{}
	for rows.Next() {
		var (
			e          domain.AuditEntry
			action     string
			changes    []byte
			notifiedTo sql.NullString
		)
		if err := rows.Scan(
			&e.ID,
			&e.TaskID,
			&action,
			&changes,
			&e.Actor,
			&e.NotificationSent,
			&notifiedTo,
			&e.CreatedAt,
		); err != nil {
			return nil, store.NewStoreError("audit_entry", "list", "scan failed", err)
		}
		e.Action = domain.Action(action)
		e.NotifiedTo = notifiedTo.String
		if err := json.Unmarshal(changes, &e.Changes); err != nil {
			return nil, store.NewStoreError("audit_entry", "list", "failed to decode changes", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("audit_entry", "list", "iteration failed", err)
	}
	return entries, nil
}

// WithTx implements store.AuditStore.WithTx
func (s *PostgresAuditStore) WithTx(tx *sql.Tx) store.AuditStore {
	return &PostgresAuditStore{db: tx, logger: s.logger}
}
