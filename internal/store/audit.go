package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/workboard-api/internal/domain"
)

// AuditStore persists audit entries. It is append-only: there is no way to
// delete or reorder entries, and only the delivery columns may be changed.
type AuditStore interface {
	// Append writes a new entry.
	Append(ctx context.Context, entry *domain.AuditEntry) error

	// SetDeliveryOutcome updates the notification_sent and notified_to columns of an entry.
	// Returns ErrAuditEntryNotFound if the entry does not exist.
	SetDeliveryOutcome(ctx context.Context, id uuid.UUID, sent bool, target string) error

	// ListByTask returns the entries for a task, most recent first.
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.AuditEntry, error)

	// WithTx returns a new AuditStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) AuditStore
}
