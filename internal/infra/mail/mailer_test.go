package mail

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type recordingSender struct {
	sent []*gomail.Message
	err  error
}

func (s *recordingSender) DialAndSend(m ...*gomail.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, m...)
	return nil
}

func body(t *testing.T, m *gomail.Message) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	return buf.String()
}

func TestSMTPMailer_SendVerificationCode(t *testing.T) {
	sender := &recordingSender{}
	m := NewSMTPMailerWithSender(sender, "noreply@navibu.app")

	err := m.SendVerificationCode(context.Background(), "a@x.com", "123456", 30*time.Minute)
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, []string{"a@x.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"noreply@navibu.app"}, msg.GetHeader("From"))
	assert.Equal(t, []string{verificationSubject}, msg.GetHeader("Subject"))

	raw := body(t, msg)
	assert.Contains(t, raw, "123456")
	assert.Contains(t, raw, "30 minutes")
}

func TestSMTPMailer_SendPasswordResetCode(t *testing.T) {
	sender := &recordingSender{}
	m := NewSMTPMailerWithSender(sender, "noreply@navibu.app")

	require.NoError(t, m.SendPasswordResetCode(context.Background(), "a@x.com", "654321", 15*time.Minute))
	require.Len(t, sender.sent, 1)

	raw := body(t, sender.sent[0])
	assert.Contains(t, raw, "654321")
	assert.Contains(t, raw, "15 minutes")
}

func TestSMTPMailer_SendError(t *testing.T) {
	boom := errors.New("connection refused")
	m := NewSMTPMailerWithSender(&recordingSender{err: boom}, "noreply@navibu.app")

	err := m.SendVerificationCode(context.Background(), "a@x.com", "123456", time.Minute)
	assert.ErrorIs(t, err, boom)
}

func TestSMTPMailer_CanceledContext(t *testing.T) {
	sender := &recordingSender{}
	m := NewSMTPMailerWithSender(sender, "noreply@navibu.app")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.SendPasswordResetCode(ctx, "a@x.com", "123456", time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sender.sent)
}

func TestLogMailer(t *testing.T) {
	var m LogMailer
	assert.NoError(t, m.SendVerificationCode(context.Background(), "a@x.com", "1", time.Minute))
	assert.NoError(t, m.SendPasswordResetCode(context.Background(), "a@x.com", "1", time.Minute))
}
