// Package audit computes task diffs and records lifecycle events in the
// append-only audit log.
//
// Diff is pure and compares only the fields a caller supplied. Log writes one
// entry per mutating operation through a store.AuditStore, which may be bound
// to the transaction carrying the mutation itself. The only later write an
// entry ever receives is its delivery outcome.
package audit
