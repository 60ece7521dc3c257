// Package mocks provides centralized mock implementations for testing.
//
// The stores here are in-memory and safe for concurrent use, so they can stand
// in for the PostgreSQL implementations in service, notify and report tests.
// Each mock also exposes function fields or error fields for overriding
// behavior per test.
//
// Usage:
//
//	tasks := mocks.NewTaskStore()
//	audit := mocks.NewAuditStore()
//	tx := mocks.NewTransactor(tasks, audit)
//
//	// Use the mocks in your test...
//
// When adding a new mock to this package:
//  1. Create a new file named after the interface being mocked
//  2. Keep the default behavior a faithful in-memory implementation
//  3. Document any helper methods or special functionality
package mocks
