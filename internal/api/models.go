package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/phrazzld/workboard-api/internal/api/shared"
	"github.com/phrazzld/workboard-api/internal/domain"
)

// CreateTaskRequest is the body of POST /api/tasks.
type CreateTaskRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=10000"`
	Assignee    string     `json:"assignee" validate:"max=200"`
	Status      string     `json:"status" validate:"omitempty,oneof=todo in-progress in-review done"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=P1 P2 P3 P4"`
	DueDate     *time.Time `json:"due_date"`
	Labels      []string   `json:"labels" validate:"max=32,dive,max=64"`
}

// ToInput converts the request to domain input.
func (r CreateTaskRequest) ToInput() domain.NewTaskInput {
	return domain.NewTaskInput{
		Title:       r.Title,
		Description: r.Description,
		Assignee:    r.Assignee,
		Status:      domain.Status(r.Status),
		Priority:    domain.Priority(r.Priority),
		DueDate:     r.DueDate,
		Labels:      r.Labels,
	}
}

// Optional is a JSON field that records whether it was present. A present
// null leaves Value nil with Set true.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// UpdateTaskRequest is the body of PATCH /api/tasks/{id}. Absent fields are
// left unchanged; only due_date may be cleared with null.
type UpdateTaskRequest struct {
	Title       Optional[string]    `json:"title"`
	Description Optional[string]    `json:"description"`
	Assignee    Optional[string]    `json:"assignee"`
	Status      Optional[string]    `json:"status"`
	Priority    Optional[string]    `json:"priority"`
	DueDate     Optional[time.Time] `json:"due_date"`
	Labels      Optional[[]string]  `json:"labels"`
}

// updateTaskFields carries the supplied PATCH values under the same limits
// CreateTaskRequest enforces.
type updateTaskFields struct {
	Title       string   `validate:"required,max=200"`
	Description string   `validate:"max=10000"`
	Assignee    string   `validate:"max=200"`
	Status      string   `validate:"oneof=todo in-progress in-review done"`
	Priority    string   `validate:"oneof=P1 P2 P3 P4"`
	Labels      []string `validate:"max=32,dive,max=64"`
}

// Validate checks every supplied non-null field. Null fields are left to
// ToPatch.
func (r UpdateTaskRequest) Validate() error {
	var f updateTaskFields
	var names []string
	if r.Title.Value != nil {
		f.Title, names = *r.Title.Value, append(names, "Title")
	}
	if r.Description.Value != nil {
		f.Description, names = *r.Description.Value, append(names, "Description")
	}
	if r.Assignee.Value != nil {
		f.Assignee, names = *r.Assignee.Value, append(names, "Assignee")
	}
	if r.Status.Value != nil {
		f.Status, names = *r.Status.Value, append(names, "Status")
	}
	if r.Priority.Value != nil {
		f.Priority, names = *r.Priority.Value, append(names, "Priority")
	}
	if r.Labels.Value != nil {
		f.Labels, names = *r.Labels.Value, append(names, "Labels")
	}
	return shared.ValidatePartial(f, names...)
}

// ToPatch converts the request to a domain patch.
func (r UpdateTaskRequest) ToPatch() (domain.TaskPatch, error) {
	var p domain.TaskPatch
	for name, o := range map[string]struct {
		set, null bool
	}{
		"title":       {r.Title.Set, r.Title.Value == nil},
		"description": {r.Description.Set, r.Description.Value == nil},
		"assignee":    {r.Assignee.Set, r.Assignee.Value == nil},
		"status":      {r.Status.Set, r.Status.Value == nil},
		"priority":    {r.Priority.Set, r.Priority.Value == nil},
		"labels":      {r.Labels.Set, r.Labels.Value == nil},
	} {
		if o.set && o.null {
			return p, fmt.Errorf("%w: %s cannot be null", ErrBadRequest, name)
		}
	}

	p.Title = r.Title.Value
	p.Description = r.Description.Value
	p.Assignee = r.Assignee.Value
	if r.Status.Value != nil {
		s := domain.Status(*r.Status.Value)
		p.Status = &s
	}
	if r.Priority.Value != nil {
		pr := domain.Priority(*r.Priority.Value)
		p.Priority = &pr
	}
	if r.DueDate.Set {
		p.DueDate = &domain.OptionalTime{Value: r.DueDate.Value}
	}
	p.Labels = r.Labels.Value
	return p, nil
}

// RunReportRequest is the body of POST /api/admin/reports.
type RunReportRequest struct {
	Recipients []string `json:"recipients" validate:"max=100,dive,email"`
}

// TestEmailRequest is the body of POST /api/admin/notifications/test.
type TestEmailRequest struct {
	To string `json:"to" validate:"required,email"`
}

// TaskResponse is a task together with the audit entry of the mutation
// that produced it. NotificationSent lets clients warn when stakeholders
// were not informed.
type TaskResponse struct {
	Task             *domain.Task       `json:"task"`
	AuditEntry       *domain.AuditEntry `json:"audit_entry,omitempty"`
	NotificationSent bool               `json:"notification_sent"`
}

// HistoryResponse is the audit trail of a task, most recent first.
type HistoryResponse struct {
	TaskID  string               `json:"task_id"`
	Entries []*domain.AuditEntry `json:"entries"`
}
