// internal/services/mail_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/tailor-backend/internal/config"
)

// Mailer sends one-time codes to users.
type Mailer interface {
	SendOTP(ctx context.Context, to, code string) error
}

type SMTPMailer struct {
	cfg config.EmailConfig
}

var otpTemplate = template.Must(template.New("otp").Parse(
	`<p>Your verification code is <b>{{.Code}}</b>. It expires in {{.Minutes}} min.</p>`))

func NewSMTPMailer(cfg config.EmailConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) SendOTP(ctx context.Context, to, code string) error {
	var body bytes.Buffer
	data := map[string]interface{}{"Code": code, "Minutes": int(otpLifetime.Minutes())}
	if err := otpTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}
	return m.sendEmail(ctx, to, "Your OTP Code", body.String())
}

func (m *SMTPMailer) sendEmail(ctx context.Context, to, subject, body string) error {
	if m.cfg.SMTPUsername == "" {
		// Email not configured, just log
		logrus.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("Email would be sent")
		return nil
	}

	auth := smtp.PlainAuth("", m.cfg.SMTPUsername, m.cfg.SMTPPassword, m.cfg.SMTPHost)
	msg := []byte(fmt.Sprintf(
		"From: \"%s\" <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		m.cfg.FromName, m.cfg.FromEmail, to, subject, body))
	addr := fmt.Sprintf("%s:%s", m.cfg.SMTPHost, m.cfg.SMTPPort)

	// net/smtp has no context support; honour cancellation around the call.
	done := make(chan error, 1)
	go func() { done <- smtp.SendMail(addr, auth, m.cfg.FromEmail, []string{to}, msg) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
