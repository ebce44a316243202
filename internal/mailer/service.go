package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/halcyonlabs/identity-service/internal/logging"
)

// Service renders and sends transactional emails over SMTP.
type Service struct {
	smtpHost     string
	smtpPort     string
	smtpUser     string
	smtpPassword string
	fromEmail    string
	frontendURL  string
}

func NewService(smtpHost, smtpPort, smtpUser, smtpPassword, frontendURL string) *Service {
	return &Service{
		smtpHost:     smtpHost,
		smtpPort:     smtpPort,
		smtpUser:     smtpUser,
		smtpPassword: smtpPassword,
		fromEmail:    smtpUser,
		frontendURL:  frontendURL,
	}
}

// SendVerificationEmail sends an email verification link.
func (s *Service) SendVerificationEmail(ctx context.Context, toEmail, displayName, token string) error {
	logger := logging.GetLoggerFromContext(ctx)

	link := fmt.Sprintf("%s/verify?token=%s", s.frontendURL, token)

	body, err := renderTemplate(verificationTemplate, templateData{Name: displayName, Link: link})
	if err != nil {
		return fmt.Errorf("render template: %w", err)
	}

	if err := s.sendEmail(toEmail, "Verify your email address", body); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("verification email sent", "email", toEmail)
	return nil
}

// SendPasswordResetEmail sends a password reset link.
func (s *Service) SendPasswordResetEmail(ctx context.Context, toEmail, displayName, token string) error {
	logger := logging.GetLoggerFromContext(ctx)

	link := fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, token)

	body, err := renderTemplate(passwordResetTemplate, templateData{Name: displayName, Link: link})
	if err != nil {
		return fmt.Errorf("render template: %w", err)
	}

	if err := s.sendEmail(toEmail, "Reset your password", body); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("password reset email sent", "email", toEmail)
	return nil
}

func (s *Service) sendEmail(to, subject, body string) error {
	auth := smtp.PlainAuth("", s.smtpUser, s.smtpPassword, s.smtpHost)

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		s.fromEmail, to, subject, body,
	))

	addr := fmt.Sprintf("%s:%s", s.smtpHost, s.smtpPort)
	return smtp.SendMail(addr, auth, s.fromEmail, []string{to}, msg)
}

type templateData struct {
	Name string
	Link string
}

func renderTemplate(tmpl string, data templateData) (string, error) {
	t, err := template.New("email").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}
