package notify_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/phrazzld/workboard-api/internal/domain"
	"github.com/phrazzld/workboard-api/internal/mocks"
	"github.com/phrazzld/workboard-api/internal/notify"
	"github.com/phrazzld/workboard-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingRenderer struct{}

func (failingRenderer) Render(kind notify.Kind, payload any) (notify.Rendered, error) {
	return notify.Rendered{}, errors.New("template exploded")
}

func newDispatcher(
	t *testing.T,
	settings notify.SettingsSource,
	renderer notify.Renderer,
	sender notify.Sender,
) *notify.Dispatcher {
	t.Helper()
	if renderer == nil {
		r, err := notify.NewTemplateRenderer(notify.RendererConfig{BaseURL: "https://board.example.com"})
		require.NoError(t, err)
		renderer = r
	}
	_, l := logger.NewTestLogger()
	d, err := notify.NewDispatcher(settings, renderer, sender, time.Second, l)
	require.NoError(t, err)
	return d
}

func testPayload() notify.TestPayload {
	return notify.TestPayload{SentAt: time.Now()}
}

func TestDispatch_UnconfiguredTransportNeverSends(t *testing.T) {
	sender := &mocks.Sender{}
	settings := mocks.ConfiguredMailSettings()
	settings.Host = ""
	d := newDispatcher(t, notify.StaticSettings(settings), nil, sender)

	out := d.Dispatch(context.Background(), notify.KindTest, testPayload(), notify.ToAddress("ops@example.com"))

	assert.Equal(t, notify.Outcome{Sent: false, Target: ""}, out)
	assert.Equal(t, 0, sender.Calls())
}

func TestDispatch_SettingsLoadFailure(t *testing.T) {
	sender := &mocks.Sender{}
	settings := &mocks.MailSettingsStore{Err: errors.New("db down")}
	d := newDispatcher(t, settings, nil, sender)

	out := d.Dispatch(context.Background(), notify.KindTest, testPayload(), notify.ToAddress("ops@example.com"))

	assert.False(t, out.Sent)
	assert.Empty(t, out.Target)
	assert.Equal(t, 0, sender.Calls())
}

func TestDispatch_UnresolvableRecipient(t *testing.T) {
	sender := &mocks.Sender{}
	dir := mocks.NewDirectoryStore(map[string]string{"Alice": "alice@example.com"})
	d := newDispatcher(t, notify.StaticSettings(mocks.ConfiguredMailSettings()), nil, sender)

	for name, to := range map[string]notify.Recipient{
		"unknown assignee": notify.ToAssignee(dir, "Mallory"),
		"unassigned":       notify.ToAssignee(dir, ""),
		"empty address":    notify.ToAddress("  "),
		"nil resolver":     nil,
	} {
		t.Run(name, func(t *testing.T) {
			out := d.Dispatch(context.Background(), notify.KindTest, testPayload(), to)

			assert.Equal(t, notify.Outcome{}, out)
		})
	}
	assert.Equal(t, 0, sender.Calls())
}

func TestDispatch_Success(t *testing.T) {
	sender := &mocks.Sender{}
	dir := mocks.NewDirectoryStore(map[string]string{"Alice": "alice@example.com"})
	d := newDispatcher(t, notify.StaticSettings(mocks.ConfiguredMailSettings()), nil, sender)
	task, err := domain.NewTask("WB-0001", domain.NewTaskInput{Title: "Fix bug", Assignee: "Alice"})
	require.NoError(t, err)

	out := d.Dispatch(context.Background(), notify.KindTaskCreated,
		notify.TaskPayload{Task: task}, notify.ToAssignee(dir, task.Assignee))

	assert.Equal(t, notify.Outcome{Sent: true, Target: "alice@example.com"}, out)
	require.Equal(t, 1, sender.Calls())
	msg := sender.Messages()[0]
	assert.Equal(t, "alice@example.com", msg.To)
	assert.Equal(t, "[WB-0001] New task assigned: Fix bug", msg.Subject)
	assert.NotEmpty(t, msg.HTML)
}

func TestDispatch_TransportFailure(t *testing.T) {
	sender := &mocks.Sender{Err: errors.New("535 authentication failed")}
	d := newDispatcher(t, notify.StaticSettings(mocks.ConfiguredMailSettings()), nil, sender)

	out := d.Dispatch(context.Background(), notify.KindTest, testPayload(), notify.ToAddress("ops@example.com"))

	assert.Equal(t, notify.Outcome{Sent: false, Target: "ops@example.com"}, out)
	assert.Equal(t, 1, sender.Calls(), "exactly one attempt, no retry")
}

func TestDispatch_RenderFailure(t *testing.T) {
	sender := &mocks.Sender{}
	d := newDispatcher(t, notify.StaticSettings(mocks.ConfiguredMailSettings()), failingRenderer{}, sender)

	out := d.Dispatch(context.Background(), notify.KindTest, testPayload(), notify.ToAddress("ops@example.com"))

	assert.Equal(t, notify.Outcome{Sent: false, Target: "ops@example.com"}, out)
	assert.Equal(t, 0, sender.Calls())
}

func TestDispatch_SenderPanicIsContained(t *testing.T) {
	sender := &mocks.Sender{SendFn: func(ctx context.Context, s domain.MailSettings, m notify.Message) error {
		panic("smtp client bug")
	}}
	d := newDispatcher(t, notify.StaticSettings(mocks.ConfiguredMailSettings()), nil, sender)

	out := d.Dispatch(context.Background(), notify.KindTest, testPayload(), notify.ToAddress("ops@example.com"))

	assert.Equal(t, notify.Outcome{Sent: false, Target: "ops@example.com"}, out)
}

func TestDispatch_SendOutlivesCallerCancellation(t *testing.T) {
	var sawCanceled bool
	sender := &mocks.Sender{SendFn: func(ctx context.Context, s domain.MailSettings, m notify.Message) error {
		sawCanceled = ctx.Err() != nil
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline, "send carries a bounded timeout")
		return nil
	}}
	d := newDispatcher(t, notify.StaticSettings(mocks.ConfiguredMailSettings()), nil, sender)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := d.Dispatch(ctx, notify.KindTest, testPayload(), notify.ToAddress("ops@example.com"))

	assert.True(t, out.Sent)
	assert.False(t, sawCanceled)
}

func TestNewDispatcher_Validation(t *testing.T) {
	r, err := notify.NewTemplateRenderer(notify.RendererConfig{})
	require.NoError(t, err)
	settings := notify.StaticSettings{}

	_, err = notify.NewDispatcher(nil, r, &mocks.Sender{}, 0, nil)
	assert.Error(t, err)
	_, err = notify.NewDispatcher(settings, nil, &mocks.Sender{}, 0, nil)
	assert.Error(t, err)
	_, err = notify.NewDispatcher(settings, r, nil, 0, nil)
	assert.Error(t, err)
}
