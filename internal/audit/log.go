package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/workboard-api/internal/domain"
	"github.com/phrazzld/workboard-api/internal/platform/logger"
	"github.com/phrazzld/workboard-api/internal/store"
)

// ErrNilEntry is returned when AttachDeliveryOutcome is given no entry.
var ErrNilEntry = errors.New("audit entry cannot be nil")

// Log records task lifecycle events.
type Log struct {
	entries store.AuditStore
	logger  *slog.Logger
}

// NewLog creates a Log writing to entries.
func NewLog(entries store.AuditStore, logger *slog.Logger) (*Log, error) {
	if entries == nil {
		return nil, fmt.Errorf("audit store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{
		entries: entries,
		logger:  logger.With(slog.String("component", "audit_log")),
	}, nil
}

// WithStore returns a Log writing to entries, typically an AuditStore bound
// to the transaction that carries the task mutation.
func (l *Log) WithStore(entries store.AuditStore) *Log {
	return &Log{entries: entries, logger: l.logger}
}

// RecordCreate appends a "created" entry whose changes hold the full task
// payload under the "initial" key.
func (l *Log) RecordCreate(ctx context.Context, task *domain.Task, actor string) (*domain.AuditEntry, error) {
	if task == nil {
		return nil, fmt.Errorf("%w: task cannot be nil", domain.ErrValidation)
	}
	changes := domain.Changes{{Field: domain.InitialChangeKey, From: nil, To: task.Payload()}}
	return l.append(ctx, task.ID, domain.ActionCreated, changes, actor)
}

// RecordChange appends an entry for a non-empty diff. The action is
// status_changed whenever status is among the changes, updated otherwise.
// An empty diff writes nothing and returns a nil entry.
func (l *Log) RecordChange(
	ctx context.Context,
	taskID uuid.UUID,
	changes domain.Changes,
	actor string,
) (*domain.AuditEntry, error) {
	if len(changes) == 0 {
		logger.FromContextOrDefault(ctx, l.logger).Debug("no tracked field changed, skipping audit entry",
			slog.String("task_id", taskID.String()))
		return nil, nil
	}
	action := domain.ActionUpdated
	if changes.Has(string(domain.FieldStatus)) {
		action = domain.ActionStatusChanged
	}
	return l.append(ctx, taskID, action, changes, actor)
}

// RecordDelete appends a "deleted" entry with empty changes.
func (l *Log) RecordDelete(ctx context.Context, taskID uuid.UUID, actor string) (*domain.AuditEntry, error) {
	return l.append(ctx, taskID, domain.ActionDeleted, domain.Changes{}, actor)
}

// AttachDeliveryOutcome stores the delivery outcome on an already persisted
// entry and mirrors it onto entry. Attaching the values the entry already
// holds issues no write.
func (l *Log) AttachDeliveryOutcome(ctx context.Context, entry *domain.AuditEntry, sent bool, target string) error {
	if entry == nil {
		return ErrNilEntry
	}
	if entry.NotificationSent == sent && entry.NotifiedTo == target {
		return nil
	}
	if err := l.entries.SetDeliveryOutcome(ctx, entry.ID, sent, target); err != nil {
		return fmt.Errorf("failed to attach delivery outcome: %w", err)
	}
	entry.NotificationSent = sent
	entry.NotifiedTo = target
	return nil
}

// History returns the entries for a task, most recent first.
func (l *Log) History(ctx context.Context, taskID uuid.UUID) ([]*domain.AuditEntry, error) {
	entries, err := l.entries.ListByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to load audit history: %w", err)
	}
	return entries, nil
}

func (l *Log) append(
	ctx context.Context,
	taskID uuid.UUID,
	action domain.Action,
	changes domain.Changes,
	actor string,
) (*domain.AuditEntry, error) {
	entry, err := domain.NewAuditEntry(taskID, action, changes, actor)
	if err != nil {
		return nil, err
	}
	if err := l.entries.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to append %s entry: %w", action, err)
	}

	logger.FromContextOrDefault(ctx, l.logger).Debug("audit entry recorded",
		slog.String("task_id", taskID.String()),
		slog.String("entry_id", entry.ID.String()),
		slog.String("action", string(action)),
		slog.Int("changed_fields", len(changes)))
	return entry, nil
}
