package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/workboard-api/internal/platform/logger"
	"github.com/phrazzld/workboard-api/internal/redact"
)

// DefaultSendTimeout bounds a delivery attempt when none is configured.
const DefaultSendTimeout = 15 * time.Second

// Dispatcher resolves, renders and sends notifications.
type Dispatcher struct {
	settings SettingsSource
	renderer Renderer
	sender   Sender
	timeout  time.Duration
	logger   *slog.Logger
}

// NewDispatcher creates a Dispatcher. A non-positive timeout uses DefaultSendTimeout.
func NewDispatcher(
	settings SettingsSource,
	renderer Renderer,
	sender Sender,
	timeout time.Duration,
	logger *slog.Logger,
) (*Dispatcher, error) {
	if settings == nil {
		return nil, fmt.Errorf("settings source cannot be nil")
	}
	if renderer == nil {
		return nil, fmt.Errorf("renderer cannot be nil")
	}
	if sender == nil {
		return nil, fmt.Errorf("sender cannot be nil")
	}
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		settings: settings,
		renderer: renderer,
		sender:   sender,
		timeout:  timeout,
		logger:   logger.With(slog.String("component", "notification_dispatcher")),
	}, nil
}

// Dispatch makes a single attempt to deliver a notification of kind to the
// address produced by to. It never fails: every problem is logged and
// reported through the returned Outcome.
//
// Caller cancellation does not abort an attempt in flight; only the send
// timeout does.
func (d *Dispatcher) Dispatch(ctx context.Context, kind Kind, payload any, to Recipient) (out Outcome) {
	log := logger.FromContextOrDefault(ctx, d.logger).With(slog.String("kind", string(kind)))
	defer func() {
		if p := recover(); p != nil {
			log.Error("notification dispatch panicked",
				slog.Any("panic", p),
				slog.String("target", out.Target))
			out = Outcome{Target: out.Target}
		}
	}()

	settings, err := d.settings.Get(ctx)
	if err != nil {
		log.Warn("could not load mail settings, notification not sent",
			redact.ErrorAttr(err))
		return Outcome{}
	}
	if !settings.Configured() {
		log.Debug("mail transport not configured, notification not sent")
		return Outcome{}
	}

	if to == nil {
		log.Debug("no recipient given, notification not sent")
		return Outcome{}
	}
	target, err := to(ctx)
	if err != nil || target == "" {
		if err == nil {
			err = ErrNoRecipient
		}
		log.Info("recipient could not be resolved, notification not sent",
			slog.String("reason", redact.Error(err)))
		return Outcome{}
	}
	out.Target = target

	msg, err := d.renderer.Render(kind, payload)
	if err != nil {
		log.Error("failed to render notification",
			slog.String("error", err.Error()))
		return Outcome{Target: target}
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()

	start := time.Now()
	err = d.sender.Send(sendCtx, settings, Message{To: target, Subject: msg.Subject, HTML: msg.HTML})
	if err != nil {
		attrs := []any{
			redact.ErrorAttr(err),
			slog.Duration("elapsed", time.Since(start)),
		}
		if errors.Is(err, context.DeadlineExceeded) {
			attrs = append(attrs, slog.Duration("timeout", d.timeout))
		}
		log.Error("failed to send notification", attrs...)
		return Outcome{Target: target}
	}

	log.Info("notification sent", slog.Duration("elapsed", time.Since(start)))
	return Outcome{Sent: true, Target: target}
}
