package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/workboard-api/internal/domain"
	"github.com/phrazzld/workboard-api/internal/platform/logger"
	"github.com/phrazzld/workboard-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func TestPostgresCounterStore_Increment(t *testing.T) {
	db, mock := newMock(t)
	_, l := logger.NewTestLogger()
	s := NewPostgresCounterStore(db, l)

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (name) DO UPDATE SET value = counters.value + 1")).
		WithArgs("task").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(int64(7)))

	v, err := s.Increment(context.Background(), "task")

	require.NoError(t, err)
	assert.Equal(t, int64(7), v)
}

func TestPostgresCounterStore_IncrementFailure(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresCounterStore(db, nil)
	boom := errors.New("connection refused")

	mock.ExpectQuery("INSERT INTO counters").WithArgs("task").WillReturnError(boom)

	_, err := s.Increment(context.Background(), "task")

	assert.ErrorIs(t, err, boom)
	var storeErr *store.StoreError
	assert.ErrorAs(t, err, &storeErr)
}

var taskRowColumns = []string{
	"id", "code", "title", "description", "assignee", "status", "priority",
	"due_date", "labels", "created_at", "updated_at",
}

func TestPostgresTaskStore_GetByIDForUpdate(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresTaskStore(db, nil)
	id := uuid.New()
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE id = $1 FOR UPDATE")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(taskRowColumns).AddRow(
			id.String(), "WB-0001", "Fix bug", "", "Alice", "todo", "P3",
			nil, []byte(`["backend"]`), now, now,
		))

	task, err := s.GetByIDForUpdate(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, "WB-0001", task.Code)
	assert.Equal(t, domain.StatusTodo, task.Status)
	assert.Nil(t, task.DueDate)
	assert.Equal(t, []string{"backend"}, task.Labels)
}

func TestPostgresTaskStore_GetByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresTaskStore(db, nil)
	id := uuid.New()

	mock.ExpectQuery("FROM tasks WHERE id").WithArgs(id).WillReturnError(sql.ErrNoRows)

	_, err := s.GetByID(context.Background(), id)

	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestPostgresTaskStore_UpdateNeverWritesCode(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresTaskStore(db, nil)
	task, err := domain.NewTask("WB-0001", domain.NewTaskInput{Title: "Fix bug"})
	require.NoError(t, err)

	mock.ExpectExec(`UPDATE tasks\s+SET title = \$2`).
		WithArgs(task.ID, task.Title, task.Description, task.Assignee, "todo", "P3",
			sqlmock.AnyArg(), "[]", task.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Update(context.Background(), task))
}

func TestPostgresTaskStore_UpdateMissing(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresTaskStore(db, nil)
	task, err := domain.NewTask("WB-0001", domain.NewTaskInput{Title: "Fix bug"})
	require.NoError(t, err)

	mock.ExpectExec("UPDATE tasks").WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, s.Update(context.Background(), task), store.ErrTaskNotFound)
}

func TestPostgresTaskStore_CreateDuplicateCode(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresTaskStore(db, nil)
	task, err := domain.NewTask("WB-0001", domain.NewTaskInput{Title: "Fix bug"})
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO tasks").WillReturnError(pgError(uniqueViolationCode, taskCodeConstraint))

	assert.ErrorIs(t, s.Create(context.Background(), task), store.ErrTaskCodeExists)
}

func TestPostgresTaskStore_CreateRejectsInvalidTask(t *testing.T) {
	db, _ := newMock(t)
	s := NewPostgresTaskStore(db, nil)

	err := s.Create(context.Background(), &domain.Task{ID: uuid.New(), Code: "WB-0001"})

	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.ErrorIs(t, err, domain.ErrEmptyTitle)
}

func TestPostgresTaskStore_WithTx(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresTaskStore(db, nil)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM tasks").WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, s.WithTx(tx).Delete(context.Background(), id))
	require.NoError(t, tx.Commit())
}

func TestPostgresAuditStore_AppendPreservesChangeOrder(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresAuditStore(db, nil)
	entry, err := domain.NewAuditEntry(uuid.New(), domain.ActionStatusChanged, domain.Changes{
		{Field: "title", From: "a", To: "b"},
		{Field: "status", From: "todo", To: "done"},
	}, "bob")
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO audit_entries").
		WithArgs(entry.ID, entry.TaskID, "status_changed",
			`{"title":{"from":"a","to":"b"},"status":{"from":"todo","to":"done"}}`,
			"bob", false, sql.NullString{}, entry.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Append(context.Background(), entry))
}

func TestPostgresAuditStore_SetDeliveryOutcome(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresAuditStore(db, nil)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE audit_entries SET notification_sent = $2, notified_to = $3 WHERE id = $1")).
		WithArgs(id, true, sql.NullString{String: "alice@example.com", Valid: true}).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE audit_entries").
		WithArgs(id, false, sql.NullString{}).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.SetDeliveryOutcome(context.Background(), id, true, "alice@example.com"))
	assert.ErrorIs(t, s.SetDeliveryOutcome(context.Background(), id, false, ""), store.ErrAuditEntryNotFound)
}

func TestPostgresAuditStore_ListByTask(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresAuditStore(db, nil)
	taskID := uuid.New()
	newer, older := uuid.New(), uuid.New()
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	// The newer entry carries the older timestamp: a writer with a lagging
	// clock. Rows come back in seq order and are kept that way.
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY seq DESC")).
		WithArgs(taskID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "task_id", "action", "changes", "actor", "notification_sent", "notified_to", "created_at",
		}).
			AddRow(newer.String(), taskID.String(), "deleted", []byte(`{}`), "bob", false, nil, now.Add(-time.Minute)).
			AddRow(older.String(), taskID.String(), "status_changed", []byte(`{"status":{"from":"todo","to":"done"}}`),
				"bob", true, "alice@example.com", now))

	entries, err := s.ListByTask(context.Background(), taskID)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, newer, entries[0].ID)
	assert.Empty(t, entries[0].Changes)
	assert.Empty(t, entries[0].NotifiedTo)
	assert.Equal(t, domain.ActionStatusChanged, entries[1].Action)
	assert.Equal(t, "alice@example.com", entries[1].NotifiedTo)
	ch, ok := entries[1].Changes.Get("status")
	require.True(t, ok)
	assert.Equal(t, "done", ch.To)
}

func TestPostgresDirectoryStore(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresDirectoryStore(db, nil)

	mock.ExpectQuery("FROM directory_entries WHERE name").WithArgs("Alice").
		WillReturnRows(sqlmock.NewRows([]string{"name", "email"}).AddRow("Alice", "alice@example.com"))
	mock.ExpectQuery("FROM directory_entries WHERE name").WithArgs("Mallory").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("FROM mail_settings").WillReturnError(sql.ErrNoRows)

	e, err := s.GetByName(context.Background(), "Alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", e.Email)

	_, err = s.GetByName(context.Background(), "Mallory")
	assert.ErrorIs(t, err, store.ErrDirectoryEntryNotFound)

	settings, err := s.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, settings.Configured())
}

func TestEncodeLabels(t *testing.T) {
	s, err := encodeLabels(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", s)

	s, err = encodeLabels([]string{"a", "b"})
	require.NoError(t, err)
	var back []string
	require.NoError(t, json.Unmarshal([]byte(s), &back))
	assert.Equal(t, []string{"a", "b"}, back)
}
