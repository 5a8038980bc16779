package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

type EmailService struct {
	client    *resend.Client
	fromEmail string
	isDev     bool
	appURL    string
	appName   string
}

func NewEmailService(apiKey, fromEmail, appURL, appName string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		isDev:     isDev,
		appURL:    appURL,
		appName:   appName,
	}
}

func (s *EmailService) SendConfirmationEmail(email, token, name string) error {
	confirmURL := fmt.Sprintf("%s/auth/verify/%s", s.appURL, token)
	subject, body := confirmationEmailTemplate(name, confirmURL, s.appName)
	return s.send("confirmation", email, subject, body, "url", confirmURL)
}

func (s *EmailService) SendWelcomeEmail(email, name string) error {
	dashboardURL := fmt.Sprintf("%s/dashboard", s.appURL)
	subject, body := welcomeEmailTemplate(name, dashboardURL, s.appName)
	return s.send("welcome", email, subject, body, "url", dashboardURL)
}

// SendPairingEmail tells a member who their partner is for the week.
func (s *EmailService) SendPairingEmail(email, name, partnerName, weekLabel, pairID string) error {
	roomURL := fmt.Sprintf("%s/room/%s", s.appURL, pairID)
	subject, body := pairingEmailTemplate(name, partnerName, weekLabel, roomURL, s.appName)
	return s.send("pairing", email, subject, body, "url", roomURL)
}

func (s *EmailService) send(kind, to, subject, body string, attrs ...any) error {
	if s.isDev {
		args := append([]any{"type", kind, "to", to, "subject", subject}, attrs...)
		slog.Info("email sent (dev mode)", args...)
		return nil
	}

	if s.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}

	_, err := s.client.Emails.SendWithContext(context.Background(), params)
	if err != nil {
		return fmt.Errorf("failed to send %s email: %w", kind, err)
	}

	slog.Info("email sent", "type", kind, "to", to)
	return nil
}
