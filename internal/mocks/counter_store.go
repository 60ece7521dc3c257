package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/workboard-api/internal/store"
)

// CounterStore is an in-memory store.CounterStore.
type CounterStore struct {
	mu     sync.Mutex
	values map[string]int64

	// Err, when set, is returned by Increment.
	Err error
}

var _ store.CounterStore = (*CounterStore)(nil)

// NewCounterStore creates a CounterStore with no counters.
func NewCounterStore() *CounterStore {
	return &CounterStore{values: make(map[string]int64)}
}

// Increment implements store.CounterStore.
func (m *CounterStore) Increment(ctx context.Context, name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	m.values[name]++
	return m.values[name], nil
}

// Set overwrites the current value of a counter.
func (m *CounterStore) Set(name string, value int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[name] = value
}
