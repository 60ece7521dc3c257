package store

import (
	"context"

	"github.com/phrazzld/workboard-api/internal/domain"
)

// DirectoryStore provides read access to the name → contact directory.
type DirectoryStore interface {
	// GetByName returns the entry for name.
	// Returns ErrDirectoryEntryNotFound if there is none.
	GetByName(ctx context.Context, name string) (*domain.DirectoryEntry, error)

	// List returns every entry ordered by name.
	List(ctx context.Context) ([]*domain.DirectoryEntry, error)
}

// MailSettingsStore provides the outgoing mail transport configuration.
type MailSettingsStore interface {
	// Get returns the current settings. Missing settings are returned as a
	// zero value, not an error.
	Get(ctx context.Context) (domain.MailSettings, error)
}
