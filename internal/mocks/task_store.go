package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/workboard-api/internal/domain"
	"github.com/phrazzld/workboard-api/internal/store"
)

// TaskStore is an in-memory store.TaskStore.
type TaskStore struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]domain.Task

	// Err, when set, is returned by every method.
	Err error
	// UpdateErr, when set, is returned by Update only.
	UpdateErr error
}

var _ store.TaskStore = (*TaskStore)(nil)

// NewTaskStore creates an empty TaskStore.
func NewTaskStore() *TaskStore {
	return &TaskStore{tasks: make(map[uuid.UUID]domain.Task)}
}

// Create implements store.TaskStore.
func (m *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for _, t := range m.tasks {
		if t.Code == task.Code {
			return store.ErrTaskCodeExists
		}
	}
	m.tasks[task.ID] = copyTask(*task)
	return nil
}

// GetByID implements store.TaskStore.
func (m *TaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	t, ok := m.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	out := copyTask(t)
	return &out, nil
}

// GetByIDForUpdate implements store.TaskStore.
func (m *TaskStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return m.GetByID(ctx, id)
}

// Update implements store.TaskStore. The stored code is kept.
func (m *TaskStore) Update(ctx context.Context, task *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	existing, ok := m.tasks[task.ID]
	if !ok {
		return store.ErrTaskNotFound
	}
	updated := copyTask(*task)
	updated.Code = existing.Code
	updated.CreatedAt = existing.CreatedAt
	m.tasks[task.ID] = updated
	return nil
}

// Delete implements store.TaskStore.
func (m *TaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(m.tasks, id)
	return nil
}

// List implements store.TaskStore.
func (m *TaskStore) List(ctx context.Context) ([]*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]*domain.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		c := copyTask(t)
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Code < out[j].Code
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// WithTx implements store.TaskStore. The mock has no transactions of its
// own; see Transactor for rollback behavior.
func (m *TaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return m
}

// Put stores task directly, bypassing validation.
func (m *TaskStore) Put(task *domain.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[task.ID] = copyTask(*task)
}

// Len returns the number of stored tasks.
func (m *TaskStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

func (m *TaskStore) snapshot() map[uuid.UUID]domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[uuid.UUID]domain.Task, len(m.tasks))
	for k, v := range m.tasks {
		out[k] = copyTask(v)
	}
	return out
}

func (m *TaskStore) restore(tasks map[uuid.UUID]domain.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = tasks
}

func copyTask(t domain.Task) domain.Task {
	if t.Labels != nil {
		t.Labels = append([]string{}, t.Labels...)
	}
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	return t
}
