package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/workboard-api/internal/domain"
	"github.com/phrazzld/workboard-api/internal/notify"
)

// Sender implements notify.Sender and records every message it is given.
type Sender struct {
	mu       sync.Mutex
	messages []notify.Message

	// SendFn allows test cases to override the Send behavior.
	SendFn func(ctx context.Context, settings domain.MailSettings, msg notify.Message) error
	// Err is returned by Send when SendFn is nil.
	Err error
}

var _ notify.Sender = (*Sender)(nil)

// Send implements notify.Sender.
func (m *Sender) Send(ctx context.Context, settings domain.MailSettings, msg notify.Message) error {
	m.mu.Lock()
	m.messages = append(m.messages, msg)
	fn, err := m.SendFn, m.Err
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, settings, msg)
	}
	return err
}

// Calls returns the number of Send invocations.
func (m *Sender) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

// Messages returns a copy of every message passed to Send.
func (m *Sender) Messages() []notify.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notify.Message{}, m.messages...)
}
