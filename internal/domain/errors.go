// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrEmptyTitle is returned when a task has no title.
	ErrEmptyTitle = errors.New("task title cannot be empty")

	// ErrInvalidStatus is returned when a task status is not one of the known values.
	ErrInvalidStatus = errors.New("invalid task status")

	// ErrInvalidPriority is returned when a task priority is not one of P1..P4.
	ErrInvalidPriority = errors.New("invalid task priority")

	// ErrInvalidAction is returned when an audit action is not recognized.
	ErrInvalidAction = errors.New("invalid audit action")
)
