package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/phrazzld/workboard-api/internal/domain"
	"github.com/phrazzld/workboard-api/internal/store"
)

// DirectoryStore is an in-memory store.DirectoryStore.
type DirectoryStore struct {
	mu      sync.Mutex
	entries map[string]string

	// Err, when set, is returned by every method.
	Err error
}

var _ store.DirectoryStore = (*DirectoryStore)(nil)

// NewDirectoryStore creates a directory from name → email pairs.
func NewDirectoryStore(entries map[string]string) *DirectoryStore {
	d := &DirectoryStore{entries: make(map[string]string, len(entries))}
	for k, v := range entries {
		d.entries[k] = v
	}
	return d
}

// GetByName implements store.DirectoryStore.
func (m *DirectoryStore) GetByName(ctx context.Context, name string) (*domain.DirectoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	email, ok := m.entries[name]
	if !ok {
		return nil, store.ErrDirectoryEntryNotFound
	}
	return &domain.DirectoryEntry{Name: name, Email: email}, nil
}

// List implements store.DirectoryStore.
func (m *DirectoryStore) List(ctx context.Context) ([]*domain.DirectoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]*domain.DirectoryEntry, 0, len(m.entries))
	for name, email := range m.entries {
		out = append(out, &domain.DirectoryEntry{Name: name, Email: email})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// MailSettingsStore is a store.MailSettingsStore returning fixed settings.
type MailSettingsStore struct {
	Settings domain.MailSettings
	Err      error
}

var _ store.MailSettingsStore = (*MailSettingsStore)(nil)

// Get implements store.MailSettingsStore.
func (m *MailSettingsStore) Get(ctx context.Context) (domain.MailSettings, error) {
	if m.Err != nil {
		return domain.MailSettings{}, m.Err
	}
	return m.Settings, nil
}

// ConfiguredMailSettings returns settings that satisfy MailSettings.Configured.
func ConfiguredMailSettings() domain.MailSettings {
	return domain.MailSettings{
		Host:        "smtp.example.com",
		Port:        587,
		Username:    "mailer",
		Password:    "mailer-secret",
		FromName:    "WorkBoard",
		FromAddress: "noreply@example.com",
	}
}
