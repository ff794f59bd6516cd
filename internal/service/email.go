package service

import (
	"context"
	"fmt"

	"rentshare-backend/internal/logger"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// mailSender is the part of *sendgrid.Client the email service needs.
type mailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type sendGridEmailService struct {
	client    mailSender
	fromEmail string
	fromName  string
}

// NewEmailService returns a SendGrid backed service, or one that only logs
// when apiKey is empty.
func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	if apiKey == "" {
		return noopEmailService{}
	}
	return &sendGridEmailService{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *sendGridEmailService) SendBookingUpdate(ctx context.Context, toEmail, toName, subject, body string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, body, "")

	logger.ExternalServiceCall("sendgrid", "send", "to", toEmail, "subject", subject)
	response, err := s.client.SendWithContext(ctx, message)
	if err == nil && response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	logger.ExternalServiceResult("sendgrid", "send", err, "to", toEmail)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

type noopEmailService struct{}

func (noopEmailService) SendBookingUpdate(ctx context.Context, toEmail, _, subject, _ string) error {
	logger.DebugContext(ctx, "Email disabled, skipping", "to", toEmail, "subject", subject)
	return nil
}
