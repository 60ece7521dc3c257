package notify

import (
	"context"
	"time"

	"github.com/phrazzld/workboard-api/internal/domain"
)

// Kind identifies a notification layout.
type Kind string

// Notification kinds
const (
	KindTaskCreated    Kind = "task-created"
	KindTaskUpdated    Kind = "task-updated"
	KindPasswordIssued Kind = "password-issued"
	KindTest           Kind = "test"
	KindDailyReport    Kind = "daily-report"
)

// Kinds lists every notification kind.
var Kinds = []Kind{KindTaskCreated, KindTaskUpdated, KindPasswordIssued, KindTest, KindDailyReport}

// TaskPayload is rendered by the task-created and task-updated kinds.
type TaskPayload struct {
	Task    *domain.Task
	Actor   string
	Changes domain.Changes
}

// PasswordPayload is rendered by the password-issued kind.
type PasswordPayload struct {
	Name     string
	Email    string
	Password string
}

// TestPayload is rendered by the test kind.
type TestPayload struct {
	SentAt time.Time
}

// ReportPayload is rendered by the daily-report kind.
type ReportPayload struct {
	Report domain.ReportSnapshot
}

// Message is a rendered email ready for delivery.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers a single message over a mail transport.
type Sender interface {
	Send(ctx context.Context, settings domain.MailSettings, msg Message) error
}

// Outcome is the result of one dispatch. Target is the resolved address, or
// empty when no recipient was resolved.
type Outcome struct {
	Sent   bool   `json:"sent"`
	Target string `json:"target,omitempty"`
}
