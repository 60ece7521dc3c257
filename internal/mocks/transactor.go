package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/workboard-api/internal/store"
)

// Transactor implements store.Transactor over the in-memory stores. Units of
// work are serialized, and a failing unit has its writes rolled back.
type Transactor struct {
	mu    sync.Mutex
	tasks *TaskStore
	audit *AuditStore

	// Err, when set, is returned without running the unit of work.
	Err error
	// Calls counts WithinTx invocations.
	Calls int
}

var _ store.Transactor = (*Transactor)(nil)

// NewTransactor creates a Transactor over tasks and audit.
func NewTransactor(tasks *TaskStore, audit *AuditStore) *Transactor {
	return &Transactor{tasks: tasks, audit: audit}
}

// WithinTx implements store.Transactor.
func (m *Transactor) WithinTx(
	ctx context.Context,
	fn func(ctx context.Context, repos store.Repositories) error,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return m.Err
	}

	tasks := m.tasks.snapshot()
	entries := m.audit.snapshot()
	if err := fn(ctx, store.Repositories{Tasks: m.tasks, Audit: m.audit}); err != nil {
		m.tasks.restore(tasks)
		m.audit.restore(entries)
		return err
	}
	return nil
}
