package mail

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
	"time"

	"navibu-api/internal/logger"

	"gopkg.in/gomail.v2"
)

// Sender is the part of *gomail.Dialer the mailer needs.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer delivers transactional mail through an SMTP relay.
type SMTPMailer struct {
	sender Sender
	from   string
}

func NewSMTPMailer(host string, port int, user, password, from string) *SMTPMailer {
	return NewSMTPMailerWithSender(gomail.NewDialer(host, port, user, password), from)
}

func NewSMTPMailerWithSender(sender Sender, from string) *SMTPMailer {
	return &SMTPMailer{sender: sender, from: from}
}

func (m *SMTPMailer) SendVerificationCode(ctx context.Context, to, code string, ttl time.Duration) error {
	body, err := render(verificationTmpl, code, ttl)
	if err != nil {
		return err
	}
	return m.send(ctx, to, verificationSubject, body)
}

func (m *SMTPMailer) SendPasswordResetCode(ctx context.Context, to, code string, ttl time.Duration) error {
	body, err := render(resetTmpl, code, ttl)
	if err != nil {
		return err
	}
	return m.send(ctx, to, resetSubject, body)
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("send %q to %s: %w", subject, to, err)
	}
	return nil
}

// LogMailer writes the message to the log instead of sending it. Used when no SMTP host is configured.
type LogMailer struct{}

func (LogMailer) SendVerificationCode(_ context.Context, to, code string, ttl time.Duration) error {
	logger.Log.Infow("verification code (mail disabled)", "to", to, "code", code, "valid_for", ttl.String())
	return nil
}

func (LogMailer) SendPasswordResetCode(_ context.Context, to, code string, ttl time.Duration) error {
	logger.Log.Infow("password reset code (mail disabled)", "to", to, "code", code, "valid_for", ttl.String())
	return nil
}

const (
	verificationSubject = "Verify your Navibu account"
	resetSubject        = "Reset your Navibu password"
)

var (
	verificationTmpl = template.Must(template.New("verification").Parse(`Hello,

Your verification code is: {{.Code}}

The code expires in {{.Minutes}} minutes.

The Navibu team
`))

	resetTmpl = template.Must(template.New("reset").Parse(`Hello,

Your password reset code is: {{.Code}}

The code expires in {{.Minutes}} minutes. If you did not ask for a reset you can ignore this mail.

The Navibu team
`))
)

func render(t *template.Template, code string, ttl time.Duration) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Code    string
		Minutes int
	}{code, int(ttl.Minutes())}
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s mail: %w", t.Name(), err)
	}
	return buf.String(), nil
}
