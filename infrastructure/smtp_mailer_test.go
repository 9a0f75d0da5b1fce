package infrastructure

import (
	"context"
	"strings"
	"testing"
	"time"

	"apploto/domain/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	raw := string(buildMessage("noreply@apploto.test", interfaces.MailMessage{
		To:      []string{"ada@example.com", "alan@example.com"},
		ReplyTo: "visitor@example.com",
		Subject: "Nouvelle loterie ouverte",
		Body:    "Hello\nWorld",
	}, now))

	headers, body, found := strings.Cut(raw, "\r\n\r\n")
	require.True(t, found)
	assert.Contains(t, headers, "From: noreply@apploto.test\r\n")
	assert.Contains(t, headers, "To: ada@example.com, alan@example.com\r\n")
	assert.Contains(t, headers, "Reply-To: visitor@example.com\r\n")
	assert.Contains(t, headers, "Subject: Nouvelle loterie ouverte\r\n")
	assert.Contains(t, headers, "Date: Sat, 14 Mar 2026 12:00:00 +0000")
	assert.Contains(t, headers, "Content-Type: text/plain; charset=UTF-8")
	assert.Equal(t, "Hello\r\nWorld", body)
}

func TestBuildMessage_EncodesNonASCIISubject(t *testing.T) {
	t.Parallel()

	raw := string(buildMessage("noreply@apploto.test", interfaces.MailMessage{
		To:      []string{"ada@example.com"},
		Subject: "Résultats du tirage",
	}, time.Now()))

	assert.Contains(t, raw, "Subject: =?utf-8?q?")
	assert.NotContains(t, raw, "Reply-To:")
}

func TestNewMailer(t *testing.T) {
	t.Parallel()

	assert.IsType(t, &LogMailer{}, NewMailer(SMTPConfig{}))
	assert.IsType(t, &SMTPMailer{}, NewMailer(SMTPConfig{Host: "smtp.example.com", Port: 587}))
}

func TestMailers_RejectEmptyRecipients(t *testing.T) {
	t.Parallel()

	err := (&LogMailer{}).Send(context.Background(), interfaces.MailMessage{Subject: "x"})
	assert.ErrorIs(t, err, ErrNoRecipients)

	err = NewSMTPMailer(SMTPConfig{Host: "127.0.0.1", Port: 1}).Send(context.Background(), interfaces.MailMessage{Subject: "x"})
	assert.ErrorIs(t, err, ErrNoRecipients)
}

func TestSMTPMailer_ConnectionFailure(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewSMTPMailer(SMTPConfig{Host: "127.0.0.1", Port: 1}).Send(ctx, interfaces.MailMessage{To: []string{"ada@example.com"}})
	assert.ErrorContains(t, err, "failed to connect to SMTP server")
}
