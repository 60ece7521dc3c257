package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Action classifies an audit entry.
type Action string

// Possible audit actions
const (
	ActionCreated       Action = "created"
	ActionUpdated       Action = "updated"
	ActionDeleted       Action = "deleted"
	ActionStatusChanged Action = "status_changed"
)

// IsValid reports whether a is a known action.
func (a Action) IsValid() bool {
	switch a {
	case ActionCreated, ActionUpdated, ActionDeleted, ActionStatusChanged:
		return true
	default:
		return false
	}
}

// SystemActor is recorded when no caller identity is available.
const SystemActor = "system"

// InitialChangeKey is the single key of a "created" entry's changes.
const InitialChangeKey = "initial"

// AuditEntry is one immutable record of a lifecycle event on a task.
// It refers to its task by ID only; tasks never reference their entries.
type AuditEntry struct {
	ID               uuid.UUID `json:"id"`
	TaskID           uuid.UUID `json:"task_id"`
	Action           Action    `json:"action"`
	Changes          Changes   `json:"changes"`
	Actor            string    `json:"actor"`
	CreatedAt        time.Time `json:"created_at"`
	NotificationSent bool      `json:"notification_sent"`
	NotifiedTo       string    `json:"notified_to,omitempty"`
}

// NewAuditEntry builds an entry with a fresh ID and timestamp.
// An empty actor is recorded as SystemActor.
func NewAuditEntry(taskID uuid.UUID, action Action, changes Changes, actor string) (*AuditEntry, error) {
	if actor == "" {
		actor = SystemActor
	}
	if changes == nil {
		changes = Changes{}
	}
	entry := &AuditEntry{
		ID:        uuid.New(),
		TaskID:    taskID,
		Action:    action,
		Changes:   changes,
		Actor:     actor,
		CreatedAt: time.Now().UTC(),
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	return entry, nil
}

// Validate checks if the AuditEntry has valid data.
func (e *AuditEntry) Validate() error {
	if e.ID == uuid.Nil || e.TaskID == uuid.Nil {
		return fmt.Errorf("%w: %w", ErrValidation, ErrInvalidID)
	}
	if !e.Action.IsValid() {
		return fmt.Errorf("%w: %w: %q", ErrValidation, ErrInvalidAction, e.Action)
	}
	return nil
}

// Change is the before/after value of one field.
type Change struct {
	Field string
	From  any
	To    any
}

type changeValue struct {
	From any `json:"from"`
	To   any `json:"to"`
}

// Changes is an ordered field → {from, to} mapping.
type Changes []Change

// Has reports whether field appears in the changes.
func (c Changes) Has(field string) bool {
	_, ok := c.Get(field)
	return ok
}

// Get returns the change recorded for field.
func (c Changes) Get(field string) (Change, bool) {
	for _, ch := range c {
		if ch.Field == field {
			return ch, true
		}
	}
	return Change{}, false
}

// Fields returns the changed field names in order.
func (c Changes) Fields() []string {
	out := make([]string, len(c))
	for i, ch := range c {
		out[i] = ch.Field
	}
	return out
}

// MarshalJSON encodes the changes as a JSON object, keeping order.
func (c Changes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ch := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(ch.Field)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(changeValue{From: ch.From, To: ch.To})
		if err != nil {
			return nil, fmt.Errorf("failed to encode change for %s: %w", ch.Field, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into changes, keeping key order.
func (c *Changes) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*c = Changes{}
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: changes must be a JSON object", ErrValidation)
	}

	out := Changes{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("%w: change key must be a string", ErrValidation)
		}
		var v changeValue
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("failed to decode change for %s: %w", key, err)
		}
		out = append(out, Change{Field: key, From: v.From, To: v.To})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*c = out
	return nil
}
