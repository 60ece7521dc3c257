package store

import "context"

// CounterStore issues values from named counters.
type CounterStore interface {
	// Increment atomically adds one to the named counter, creating it at 1 if
	// it does not exist, and returns the new value. Concurrent callers never
	// observe the same value.
	Increment(ctx context.Context, name string) (int64, error)
}
