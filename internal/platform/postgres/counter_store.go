package postgres

import (
	"context"
	"log/slog"

	"github.com/phrazzld/workboard-api/internal/platform/logger"
	"github.com/phrazzld/workboard-api/internal/store"
)

// incrementCounterQuery creates the counter at 1 or adds one to it, and
// returns the new value, as a single statement.
const incrementCounterQuery = `
	INSERT INTO counters (name, value)
	VALUES ($1, 1)
	ON CONFLICT (name) DO UPDATE SET value = counters.value + 1
	RETURNING value
`

// PostgresCounterStore implements the store.CounterStore interface.
type PostgresCounterStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCounterStore creates a new PostgreSQL implementation of the CounterStore interface.
func NewPostgresCounterStore(db store.DBTX, logger *slog.Logger) *PostgresCounterStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCounterStore{
		db:     db,
		logger: logger.With(slog.String("component", "counter_store")),
	}
}

// Ensure PostgresCounterStore implements store.CounterStore interface
var _ store.CounterStore = (*PostgresCounterStore)(nil)

// Increment implements store.CounterStore.Increment
func (s *PostgresCounterStore) Increment(ctx context.Context, name string) (int64, error) {
	var value int64
	if err := s.db.QueryRowContext(ctx, incrementCounterQuery, name).Scan(&value); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to increment counter",
			slog.String("error", err.Error()),
			slog.String("counter", name))
		return 0, store.NewStoreError("counter", "increment", "upsert failed", MapError(err))
	}
	return value, nil
}
