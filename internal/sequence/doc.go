// Package sequence issues human-readable task codes from named counters.
//
// Values come from a store.CounterStore whose Increment is a single atomic
// storage operation, so concurrent callers on any number of server instances
// never observe the same value. Counters are never held in process memory.
package sequence
