package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		task, err := NewTask("WB-0001", NewTaskInput{Title: "  Fix bug  ", Assignee: "Alice"})

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, task.ID)
		assert.Equal(t, "WB-0001", task.Code)
		assert.Equal(t, "Fix bug", task.Title)
		assert.Equal(t, StatusTodo, task.Status)
		assert.Equal(t, PriorityP3, task.Priority)
		assert.NotNil(t, task.Labels)
		assert.False(t, task.CreatedAt.IsZero())
		assert.Equal(t, task.CreatedAt, task.UpdatedAt)
	})

	t.Run("normalizes labels", func(t *testing.T) {
		task, err := NewTask("WB-0002", NewTaskInput{
			Title:  "Labels",
			Labels: []string{"backend", " backend ", "", "urgent"},
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"backend", "urgent"}, task.Labels)
	})

	tests := []struct {
		name    string
		code    string
		input   NewTaskInput
		wantErr error
	}{
		{"empty title", "WB-0003", NewTaskInput{Title: "   "}, ErrEmptyTitle},
		{"unknown status", "WB-0004", NewTaskInput{Title: "x", Status: "blocked"}, ErrInvalidStatus},
		{"unknown priority", "WB-0005", NewTaskInput{Title: "x", Priority: "P9"}, ErrInvalidPriority},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := NewTask(tt.code, tt.input)

			assert.Nil(t, task)
			assert.True(t, errors.Is(err, ErrValidation))
			assert.True(t, errors.Is(err, tt.wantErr))
		})
	}

	t.Run("missing code", func(t *testing.T) {
		_, err := NewTask("", NewTaskInput{Title: "x"})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestTaskApply(t *testing.T) {
	task, err := NewTask("WB-0001", NewTaskInput{Title: "Fix bug", Assignee: "Alice"})
	require.NoError(t, err)
	task.UpdatedAt = task.UpdatedAt.Add(-time.Hour)
	before := task.UpdatedAt

	done := StatusDone
	title := "Fix the bug"
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	err = task.Apply(TaskPatch{
		Title:   &title,
		Status:  &done,
		DueDate: &OptionalTime{Value: &due},
	})

	require.NoError(t, err)
	assert.Equal(t, "WB-0001", task.Code, "code is immutable")
	assert.Equal(t, "Fix the bug", task.Title)
	assert.Equal(t, StatusDone, task.Status)
	assert.Equal(t, "Alice", task.Assignee, "unsupplied fields are untouched")
	require.NotNil(t, task.DueDate)
	assert.True(t, task.DueDate.Equal(due))
	assert.True(t, task.UpdatedAt.After(before))

	t.Run("clearing the due date", func(t *testing.T) {
		require.NoError(t, task.Apply(TaskPatch{DueDate: &OptionalTime{}}))
		assert.Nil(t, task.DueDate)
	})

	t.Run("invalid patch leaves task unchanged", func(t *testing.T) {
		bad := Status("archived")
		err := task.Apply(TaskPatch{Status: &bad, Title: &title})

		assert.ErrorIs(t, err, ErrInvalidStatus)
		assert.Equal(t, StatusDone, task.Status)
	})
}

func TestTaskPatchSnapshot(t *testing.T) {
	assert.True(t, TaskPatch{}.IsEmpty())

	status := StatusInReview
	labels := []string{"b", "a", "b"}
	snap := TaskPatch{Status: &status, Labels: &labels}.Snapshot()

	assert.Len(t, snap, 2)
	assert.Equal(t, StatusInReview, snap[FieldStatus])
	assert.Equal(t, []string{"b", "a"}, snap[FieldLabels])
	_, hasTitle := snap[FieldTitle]
	assert.False(t, hasTitle)
}

func TestTaskSnapshotCoversTrackedFields(t *testing.T) {
	task, err := NewTask("WB-0001", NewTaskInput{Title: "x"})
	require.NoError(t, err)

	snap := task.Snapshot()
	for _, f := range TrackedFields {
		_, ok := snap[f]
		assert.True(t, ok, "snapshot missing %s", f)
	}
	assert.Len(t, snap, len(TrackedFields))
}

func TestTaskPayload(t *testing.T) {
	due := time.Date(2026, 5, 4, 10, 0, 0, 0, time.FixedZone("IST", 5*3600+1800))
	task, err := NewTask("WB-0007", NewTaskInput{Title: "Ship", DueDate: &due})
	require.NoError(t, err)

	p := task.Payload()

	assert.Equal(t, "WB-0007", p["code"])
	assert.Equal(t, "Ship", p["title"])
	assert.Equal(t, "todo", p["status"])
	assert.Equal(t, "2026-05-04T04:30:00Z", p["due_date"])
	assert.Equal(t, []string{}, p["labels"])

	task.DueDate = nil
	assert.Nil(t, task.Payload()["due_date"])
}
