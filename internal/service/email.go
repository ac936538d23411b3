package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"vehicle-rental-backend/internal/logger"
)

const sendGridHost = "https://api.sendgrid.com"

type sendGridEmailService struct {
	apiKey    string
	host      string
	fromEmail string
	fromName  string
}

// NewEmailService returns a SendGrid backed EmailService, or one that only
// logs when apiKey is empty.
func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	if apiKey == "" {
		return noopEmailService{}
	}
	return &sendGridEmailService{
		apiKey:    apiKey,
		host:      sendGridHost,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *sendGridEmailService) SendAdminNotification(ctx context.Context, adminEmail, subject, message string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail("Administrator", adminEmail)
	htmlContent := "<p>" + strings.ReplaceAll(html.EscapeString(message), "\n", "<br>") + "</p>"
	msg := mail.NewSingleEmail(from, subject, to, message, htmlContent)

	request := sendgrid.GetRequest(s.apiKey, "/v3/mail/send", s.host)
	request.Method = "POST"
	request.Body = mail.GetRequestBody(msg)

	logger.ExternalServiceCall("sendgrid", "SendAdminNotification", "to", adminEmail)
	response, err := sendgrid.MakeRequestWithContext(ctx, request)
	if err == nil && response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	logger.ExternalServiceResult("sendgrid", "SendAdminNotification", err, "to", adminEmail)
	if err != nil {
		return fmt.Errorf("failed to send admin notification: %w", err)
	}
	return nil
}

type noopEmailService struct{}

func (noopEmailService) SendAdminNotification(ctx context.Context, adminEmail, subject, message string) error {
	logger.Info("E-mail delivery disabled, admin notification dropped", "to", adminEmail, "subject", subject)
	return nil
}
