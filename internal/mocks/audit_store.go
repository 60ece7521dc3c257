package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/workboard-api/internal/domain"
	"github.com/phrazzld/workboard-api/internal/store"
)

// AuditStore is an in-memory, append-only store.AuditStore.
type AuditStore struct {
	mu      sync.Mutex
	entries []domain.AuditEntry

	// AppendErr, when set, is returned by Append.
	AppendErr error
	// SetOutcomeErr, when set, is returned by SetDeliveryOutcome.
	SetOutcomeErr error
	// ListErr, when set, is returned by ListByTask.
	ListErr error

	// SetOutcomeCalls counts SetDeliveryOutcome invocations.
	SetOutcomeCalls int
}

var _ store.AuditStore = (*AuditStore)(nil)

// NewAuditStore creates an empty AuditStore.
func NewAuditStore() *AuditStore {
	return &AuditStore{}
}

// Append implements store.AuditStore.
func (m *AuditStore) Append(ctx context.Context, entry *domain.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AppendErr != nil {
		return m.AppendErr
	}
	m.entries = append(m.entries, *entry)
	return nil
}

// SetDeliveryOutcome implements store.AuditStore.
func (m *AuditStore) SetDeliveryOutcome(ctx context.Context, id uuid.UUID, sent bool, target string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetOutcomeCalls++
	if m.SetOutcomeErr != nil {
		return m.SetOutcomeErr
	}
	for i := range m.entries {
		if m.entries[i].ID == id {
			m.entries[i].NotificationSent = sent
			m.entries[i].NotifiedTo = target
			return nil
		}
	}
	return store.ErrAuditEntryNotFound
}

// ListByTask implements store.AuditStore. Entries are returned in reverse
// insertion order, whatever their timestamps say.
func (m *AuditStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := []*domain.AuditEntry{}
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].TaskID == taskID {
			e := m.entries[i]
			out = append(out, &e)
		}
	}
	return out, nil
}

// WithTx implements store.AuditStore.
func (m *AuditStore) WithTx(tx *sql.Tx) store.AuditStore {
	return m
}

// All returns every stored entry in insertion order.
func (m *AuditStore) All() []domain.AuditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.AuditEntry{}, m.entries...)
}

func (m *AuditStore) snapshot() []domain.AuditEntry {
	return m.All()
}

func (m *AuditStore) restore(entries []domain.AuditEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = entries
}
