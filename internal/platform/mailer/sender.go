package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/workboard-api/internal/domain"
	"github.com/phrazzld/workboard-api/internal/notify"
	"github.com/phrazzld/workboard-api/internal/platform/logger"
	"github.com/wneessen/go-mail"
)

// Default SMTP ports used when the settings leave the port unset.
const (
	DefaultPort    = 587
	DefaultSSLPort = 465
)

// ErrNotConfigured is returned when Send is called with incomplete settings.
var ErrNotConfigured = errors.New("mail transport is not configured")

// SMTPSender sends messages through an SMTP relay using go-mail.
type SMTPSender struct {
	timeout time.Duration
	logger  *slog.Logger
}

var _ notify.Sender = (*SMTPSender)(nil)

// NewSMTPSender creates a sender whose connections time out after timeout.
func NewSMTPSender(timeout time.Duration, logger *slog.Logger) *SMTPSender {
	if timeout <= 0 {
		timeout = notify.DefaultSendTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTPSender{
		timeout: timeout,
		logger:  logger.With(slog.String("component", "smtp_sender")),
	}
}

// Send implements notify.Sender. It dials, authenticates and delivers msg in
// a single attempt.
func (s *SMTPSender) Send(ctx context.Context, settings domain.MailSettings, msg notify.Message) error {
	if !settings.Configured() {
		return ErrNotConfigured
	}

	m, err := buildMessage(settings, msg)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(settings.Host, clientOptions(settings, s.timeout)...)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}

	log := logger.FromContextOrDefault(ctx, s.logger)
	start := time.Now()
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to deliver message via %s: %w", settings.Host, err)
	}
	log.Debug("message delivered",
		slog.String("host", settings.Host),
		slog.Duration("duration", time.Since(start)))
	return nil
}

func clientOptions(settings domain.MailSettings, timeout time.Duration) []mail.Option {
	port := settings.Port
	if port == 0 {
		port = DefaultPort
		if settings.Secure {
			port = DefaultSSLPort
		}
	}

	opts := []mail.Option{
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(settings.Username),
		mail.WithPassword(settings.Password),
		mail.WithTimeout(timeout),
	}
	if settings.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	return opts
}

func buildMessage(settings domain.MailSettings, msg notify.Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.FromFormat(settings.FromName, settings.FromAddress); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetDate()
	m.SetBodyString(mail.TypeTextHTML, msg.HTML)
	return m, nil
}
