package store

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by every store implementation. Callers match them
// with errors.Is; entity-specific values wrap the generic ones.
var (
	ErrNotFound          = errors.New("entity not found")
	ErrDuplicate         = errors.New("entity already exists")
	ErrInvalidEntity     = errors.New("invalid entity")
	ErrTransactionFailed = errors.New("transaction failed")

	ErrTaskNotFound           = fmt.Errorf("%w: task", ErrNotFound)
	ErrAuditEntryNotFound     = fmt.Errorf("%w: audit entry", ErrNotFound)
	ErrDirectoryEntryNotFound = fmt.Errorf("%w: directory entry", ErrNotFound)

	// ErrTaskCodeExists means a second task tried to claim an issued code.
	// Seeing it implies the counter and the tasks table disagree.
	ErrTaskCodeExists = fmt.Errorf("%w: task code", ErrDuplicate)
)

// IsNotFoundError reports whether err is any "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError reports whether err is any "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError annotates a storage failure with the table-level entity and the
// store method that produced it.
type StoreError struct {
	Entity  string
	Op      string
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	msg := fmt.Sprintf("store: %s %s: %s", e.Entity, e.Op, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps err for the given entity and operation.
func NewStoreError(entity, op, message string, err error) *StoreError {
	return &StoreError{Entity: entity, Op: op, Message: message, Err: err}
}
