// Package mail sends transactional email.
package mail

import (
	"context"
	"fmt"
	"time"

	"chirp/internal/config"
	"chirp/internal/middleware"

	"gopkg.in/gomail.v2"
)

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSender returns an SMTP sender when SMTP_HOST is configured and a
// logging sender otherwise.
func NewSender(cfg *config.Config) Sender {
	if cfg == nil || cfg.SMTPHost == "" {
		return LogSender{}
	}
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:   cfg.SMTPFrom,
	}
}

// SMTPSender delivers through an SMTP relay.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func (s *SMTPSender) Send(_ context.Context, msg Message) error {
	if err := s.dialer.DialAndSend(buildMessage(s.from, msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

func buildMessage(from string, msg Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)
	return m
}

// LogSender writes messages to the application log instead of sending them.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, msg Message) error {
	middleware.Logger.InfoContext(ctx, "mail not sent, SMTP disabled", "to", msg.To, "subject", msg.Subject)
	return nil
}

const sendTimeout = 30 * time.Second

// SendAsync delivers msg in the background. Failures are logged only.
func SendAsync(ctx context.Context, s Sender, msg Message) {
	if s == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, sendTimeout)
		defer cancel()
		if err := s.Send(ctx, msg); err != nil {
			middleware.Logger.ErrorContext(ctx, "failed to send email", "to", msg.To, "error", err)
		}
	}()
}

// PasswordResetMessage builds the email carrying a reset link.
func PasswordResetMessage(to, frontendURL, token string) Message {
	link := fmt.Sprintf("%s/resetpassword/%s", frontendURL, token)
	return Message{
		To:      to,
		Subject: "Chirp password recovery",
		Body: fmt.Sprintf("Your password reset link is:\n\n%s\n\n"+
			"It expires in 15 minutes. If you did not request it, please ignore this email.", link),
	}
}
