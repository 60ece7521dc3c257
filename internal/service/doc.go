// Package service contains the application-level task lifecycle operations.
//
// LifecycleService is the only place where a task mutation, its audit entry
// and its notification are coordinated:
//
//  1. The task write and its audit entry share one database transaction,
//     with the prior state read FOR UPDATE.
//  2. The notification is dispatched after commit, outside any lock.
//  3. The delivery outcome is attached to the committed entry.
//
// Services receive their dependencies through constructor injection and
// depend only on the store interfaces, never on a concrete database.
package service
