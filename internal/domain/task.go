package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status represents where a task sits in the workflow.
type Status string

// Possible task status values
const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusInReview   Status = "in-review"
	StatusDone       Status = "done"
)

// Statuses lists every known status in workflow order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusInReview, StatusDone}

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusInReview, StatusDone:
		return true
	default:
		return false
	}
}

// Priority ranks tasks from P1 (most urgent) to P4.
type Priority string

// Possible task priority values
const (
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
	PriorityP3 Priority = "P3"
	PriorityP4 Priority = "P4"
)

// IsValid reports whether p is one of P1..P4.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityP1, PriorityP2, PriorityP3, PriorityP4:
		return true
	default:
		return false
	}
}

// Field names a task attribute.
type Field string

// Task attributes eligible for diffing and auditing.
const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldAssignee    Field = "assignee"
	FieldStatus      Field = "status"
	FieldPriority    Field = "priority"
	FieldDueDate     Field = "due_date"
	FieldLabels      Field = "labels"
)

// TrackedFields is the set of task attributes the diff engine compares and the
// audit log records. Order here is the order changes are reported in.
var TrackedFields = []Field{
	FieldTitle,
	FieldDescription,
	FieldAssignee,
	FieldStatus,
	FieldPriority,
	FieldDueDate,
	FieldLabels,
}

// Snapshot is a point-in-time read of a set of task fields.
// A field missing from the map was not read (or not supplied, for patches).
type Snapshot map[Field]any

// Task is a unit of tracked work.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	Code        string     `json:"code"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Assignee    string     `json:"assignee"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Labels      []string   `json:"labels"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTaskInput carries the caller-supplied fields for a new task.
type NewTaskInput struct {
	Title       string
	Description string
	Assignee    string
	Status      Status
	Priority    Priority
	DueDate     *time.Time
	Labels      []string
}

// NewTask builds a task from input with the given sequence code.
// Status defaults to todo and priority to P3 when empty.
func NewTask(code string, in NewTaskInput) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		Code:        code,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Assignee:    strings.TrimSpace(in.Assignee),
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		Labels:      normalizeLabels(in.Labels),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if task.Status == "" {
		task.Status = StatusTodo
	}
	if task.Priority == "" {
		task.Priority = PriorityP3
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return fmt.Errorf("%w: %w", ErrValidation, ErrInvalidID)
	}
	if t.Code == "" {
		return fmt.Errorf("%w: task code cannot be empty", ErrValidation)
	}
	if t.Title == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyTitle)
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("%w: %w: %q", ErrValidation, ErrInvalidStatus, t.Status)
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("%w: %w: %q", ErrValidation, ErrInvalidPriority, t.Priority)
	}
	return nil
}

// Snapshot returns every tracked field of the task.
func (t *Task) Snapshot() Snapshot {
	return Snapshot{
		FieldTitle:       t.Title,
		FieldDescription: t.Description,
		FieldAssignee:    t.Assignee,
		FieldStatus:      t.Status,
		FieldPriority:    t.Priority,
		FieldDueDate:     t.DueDate,
		FieldLabels:      t.Labels,
	}
}

// Payload returns the full task as a JSON-friendly map. It is what a
// "created" audit entry records as the initial value.
func (t *Task) Payload() map[string]any {
	var due any
	if t.DueDate != nil {
		due = t.DueDate.UTC().Format(time.RFC3339)
	}
	labels := t.Labels
	if labels == nil {
		labels = []string{}
	}
	return map[string]any{
		"id":          t.ID.String(),
		"code":        t.Code,
		"title":       t.Title,
		"description": t.Description,
		"assignee":    t.Assignee,
		"status":      string(t.Status),
		"priority":    string(t.Priority),
		"due_date":    due,
		"labels":      labels,
		"created_at":  t.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at":  t.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// Apply copies the supplied fields of p onto the task and bumps UpdatedAt.
// The sequence code is never touched.
func (t *Task) Apply(p TaskPatch) error {
	next := *t
	if p.Title != nil {
		next.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		next.Description = *p.Description
	}
	if p.Assignee != nil {
		next.Assignee = strings.TrimSpace(*p.Assignee)
	}
	if p.Status != nil {
		next.Status = *p.Status
	}
	if p.Priority != nil {
		next.Priority = *p.Priority
	}
	if p.DueDate != nil {
		next.DueDate = p.DueDate.Value
	}
	if p.Labels != nil {
		next.Labels = normalizeLabels(*p.Labels)
	}

	if err := next.Validate(); err != nil {
		return err
	}
	next.UpdatedAt = time.Now().UTC()
	*t = next
	return nil
}

// OptionalTime distinguishes "clear the due date" (Value nil) from
// "not supplied" (the *OptionalTime itself is nil).
type OptionalTime struct {
	Value *time.Time
}

// TaskPatch is a partial update. Nil fields were not supplied by the caller.
type TaskPatch struct {
	Title       *string
	Description *string
	Assignee    *string
	Status      *Status
	Priority    *Priority
	DueDate     *OptionalTime
	Labels      *[]string
}

// Snapshot returns only the fields the caller supplied.
func (p TaskPatch) Snapshot() Snapshot {
	s := Snapshot{}
	if p.Title != nil {
		s[FieldTitle] = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		s[FieldDescription] = *p.Description
	}
	if p.Assignee != nil {
		s[FieldAssignee] = strings.TrimSpace(*p.Assignee)
	}
	if p.Status != nil {
		s[FieldStatus] = *p.Status
	}
	if p.Priority != nil {
		s[FieldPriority] = *p.Priority
	}
	if p.DueDate != nil {
		s[FieldDueDate] = p.DueDate.Value
	}
	if p.Labels != nil {
		s[FieldLabels] = normalizeLabels(*p.Labels)
	}
	return s
}

// IsEmpty reports whether no field was supplied.
func (p TaskPatch) IsEmpty() bool {
	return len(p.Snapshot()) == 0
}

func normalizeLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
