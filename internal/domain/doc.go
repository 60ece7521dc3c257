// Package domain defines the core business entities of the task lifecycle
// engine: tasks, audit entries, directory entries, mail settings and report
// snapshots. It has no dependencies on storage or transport code.
package domain
