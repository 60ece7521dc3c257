package mailer

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/phrazzld/workboard-api/internal/domain"
	"github.com/phrazzld/workboard-api/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

func configured() domain.MailSettings {
	return domain.MailSettings{
		Host:        "smtp.example.com",
		Port:        587,
		Username:    "mailer",
		Password:    "mailer-secret",
		FromName:    "WorkBoard",
		FromAddress: "noreply@example.com",
	}
}

func TestSend_NotConfigured(t *testing.T) {
	s := NewSMTPSender(time.Second, nil)

	err := s.Send(context.Background(), domain.MailSettings{}, notify.Message{To: "alice@example.com"})

	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSend_InvalidRecipient(t *testing.T) {
	s := NewSMTPSender(time.Second, nil)

	err := s.Send(context.Background(), configured(), notify.Message{To: "not an address"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid recipient address")
}

func TestBuildMessage(t *testing.T) {
	m, err := buildMessage(configured(), notify.Message{
		To:      "alice@example.com",
		Subject: "[WB-0001] New task assigned: Fix bug",
		HTML:    "<p>hello</p>",
	})
	require.NoError(t, err)

	from := m.GetFrom()
	require.Len(t, from, 1)
	assert.Equal(t, "noreply@example.com", from[0].Address)
	assert.Equal(t, "WorkBoard", from[0].Name)

	rcpts, err := m.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"alice@example.com"}, rcpts)

	assert.Equal(t, []string{"[WB-0001] New task assigned: Fix bug"}, m.GetGenHeader(mail.HeaderSubject))
}

func TestClientOptionsDefaultPort(t *testing.T) {
	plain := configured()
	plain.Port = 0
	c, err := mail.NewClient(plain.Host, clientOptions(plain, time.Second)...)
	require.NoError(t, err)
	assert.Equal(t, net.JoinHostPort(plain.Host, strconv.Itoa(DefaultPort)), c.ServerAddr())

	secure := plain
	secure.Secure = true
	c, err = mail.NewClient(secure.Host, clientOptions(secure, time.Second)...)
	require.NoError(t, err)
	assert.Equal(t, net.JoinHostPort(secure.Host, strconv.Itoa(DefaultSSLPort)), c.ServerAddr())

	explicit := configured()
	explicit.Port = 2525
	c, err = mail.NewClient(explicit.Host, clientOptions(explicit, time.Second)...)
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:2525", c.ServerAddr())
}
