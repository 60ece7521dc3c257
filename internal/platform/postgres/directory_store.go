package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/phrazzld/workboard-api/internal/domain"
	"github.com/phrazzld/workboard-api/internal/platform/logger"
	"github.com/phrazzld/workboard-api/internal/store"
)

// PostgresDirectoryStore implements store.DirectoryStore and
// store.MailSettingsStore.
type PostgresDirectoryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDirectoryStore creates a new PostgreSQL directory store.
func NewPostgresDirectoryStore(db store.DBTX, logger *slog.Logger) *PostgresDirectoryStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresDirectoryStore{
		db:     db,
		logger: logger.With(slog.String("component", "directory_store")),
	}
}

var (
	_ store.DirectoryStore    = (*PostgresDirectoryStore)(nil)
	_ store.MailSettingsStore = (*PostgresDirectoryStore)(nil)
)

// GetByName implements store.DirectoryStore.GetByName
func (s *PostgresDirectoryStore) GetByName(ctx context.Context, name string) (*domain.DirectoryEntry, error) {
	var e domain.DirectoryEntry
	err := s.db.QueryRowContext(ctx,
		`SELECT name, email FROM directory_entries WHERE name = $1`, name).
		Scan(&e.Name, &e.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrDirectoryEntryNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to look up directory entry",
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("directory_entry", "get", "query failed", MapError(err))
	}
	return &e, nil
}

// List implements store.DirectoryStore.List
func (s *PostgresDirectoryStore) List(ctx context.Context) ([]*domain.DirectoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, email FROM directory_entries ORDER BY name`)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list directory entries",
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("directory_entry", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	entries := []*domain.DirectoryEntry{}
	for rows.Next() {
		var e domain.DirectoryEntry
		if err := rows.Scan(&e.Name, &e.Email); err != nil {
			return nil, store.NewStoreError("directory_entry", "list", "scan failed", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("directory_entry", "list", "iteration failed", err)
	}
	return entries, nil
}

// Get implements store.MailSettingsStore.Get
// A missing settings row is the unconfigured state, not an error.
func (s *PostgresDirectoryStore) Get(ctx context.Context) (domain.MailSettings, error) {
	var m domain.MailSettings
	err := s.db.QueryRowContext(ctx, `
		SELECT host, port, secure, username, password, from_name, from_address
		FROM mail_settings
		WHERE id = 1
	`).Scan(&m.Host, &m.Port, &m.Secure, &m.Username, &m.Password, &m.FromName, &m.FromAddress)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.MailSettings{}, nil
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load mail settings",
			slog.String("error", err.Error()))
		return domain.MailSettings{}, store.NewStoreError("mail_settings", "get", "query failed", MapError(err))
	}
	return m, nil
}
