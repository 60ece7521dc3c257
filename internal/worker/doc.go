// Package worker runs background jobs on a fixed pool of goroutines fed by a
// bounded in-memory queue.
//
// Jobs are not persisted. A job still queued when the process exits is lost,
// which is acceptable for notification delivery: an undelivered notification
// leaves its audit entry with notification_sent=false.
package worker
