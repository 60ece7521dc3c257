// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the lifecycle engine, so that sequence issuance, audit persistence and
// task reads remain independent of specific database technologies.
package store
