// utils/email.go
package utils

import (
	"fmt"
	"html"
	"strings"

	"github.com/keighl/postmark"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"go-storefront/config"
	"go-storefront/models"
	"go-storefront/orderview"
)

// Mailer sends a single email.
type Mailer interface {
	SendEmail(toEmail, subject, htmlContent string) error
}

type postmarkMailer struct {
	client *postmark.Client
	from   string
}

func (m *postmarkMailer) SendEmail(toEmail, subject, htmlContent string) error {
	_, err := m.client.SendEmail(postmark.Email{
		From:     m.from,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlContent,
		TextBody: stripTags(htmlContent),
	})
	if err != nil {
		return fmt.Errorf("postmark: %w", err)
	}
	return nil
}

type sendgridMailer struct {
	client *sendgrid.Client
	from   string
}

func (m *sendgridMailer) SendEmail(toEmail, subject, htmlContent string) error {
	message := mail.NewSingleEmail(mail.NewEmail("", m.from), subject, mail.NewEmail("", toEmail), stripTags(htmlContent), htmlContent)
	resp, err := m.client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

type discardMailer struct{}

func (discardMailer) SendEmail(string, string, string) error { return nil }

// EmailService renders storefront emails and hands them to a Mailer
type EmailService struct {
	mailer  Mailer
	baseURL string
	logger  *zap.Logger
}

// NewEmailService builds the provider selected in cfg.
func NewEmailService(cfg config.EmailConfig, logger *zap.Logger) (*EmailService, error) {
	var m Mailer
	switch cfg.Provider {
	case "postmark":
		if cfg.PostmarkToken == "" {
			return nil, fmt.Errorf("POSTMARK_API_TOKEN is not set")
		}
		m = &postmarkMailer{client: postmark.NewClient(cfg.PostmarkToken, ""), from: cfg.Sender}
	case "sendgrid":
		if cfg.SendgridAPIKey == "" {
			return nil, fmt.Errorf("SENDGRID_API_KEY is not set")
		}
		m = &sendgridMailer{client: sendgrid.NewSendClient(cfg.SendgridAPIKey), from: cfg.Sender}
	default:
		m = discardMailer{}
	}
	return NewEmailServiceWithMailer(m, cfg.BaseURL, logger), nil
}

// NewEmailServiceWithMailer wraps an existing Mailer.
func NewEmailServiceWithMailer(m Mailer, baseURL string, logger *zap.Logger) *EmailService {
	return &EmailService{mailer: m, baseURL: strings.TrimRight(baseURL, "/"), logger: logger}
}

// SendEmail sends a basic email to the specified recipient
func (es *EmailService) SendEmail(toEmail, subject, htmlContent string) error {
	if err := es.mailer.SendEmail(toEmail, subject, htmlContent); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	es.logger.Debug("email sent", zap.String("to", toEmail), zap.String("subject", subject))
	return nil
}

// SendAsync sends in the background and logs failures.
func (es *EmailService) SendAsync(toEmail, subject, htmlContent string) {
	go func() {
		if err := es.SendEmail(toEmail, subject, htmlContent); err != nil {
			es.logger.Warn("email delivery failed", zap.String("to", toEmail), zap.Error(err))
		}
	}()
}

// SendVerificationEmail sends an email verification link to the user
func (es *EmailService) SendVerificationEmail(toEmail, token string) error {
	subject := "Verify Your Email"
	verificationLink := fmt.Sprintf("%s/verify?token=%s", es.baseURL, token)
	htmlContent := fmt.Sprintf(
		"<strong>Please verify your email by clicking on the following link:</strong> <a href=\"%s\">Verify Email</a>",
		verificationLink,
	)
	return es.SendEmail(toEmail, subject, htmlContent)
}

// OrderConfirmation renders the confirmation email for a placed order.
func (es *EmailService) OrderConfirmation(order *models.Order) (subject, body string) {
	summary := orderview.SummarizeOrder(order)
	var rows strings.Builder
	for _, it := range order.Items {
		fmt.Fprintf(&rows, "<tr><td>%s</td><td>%d</td><td>%s</td></tr>",
			html.EscapeString(it.Name), it.Quantity, orderview.FormatAmount(it.Price))
	}
	var totals strings.Builder
	for _, l := range summary.Lines() {
		fmt.Fprintf(&totals, "%s: <strong>%s</strong><br>", l.Label, l.Value)
	}
	subject = fmt.Sprintf("Order Confirmation - %s", order.OrderNumber)
	body = fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Thank you for your purchase! Your order <strong>%s</strong> has been placed.<br><br><table>%s</table><br>%s<br>Track your order at <a href=\"%s/track\">%s/track</a>.",
		html.EscapeString(order.ShippingAddress.FullName),
		order.OrderNumber,
		rows.String(),
		totals.String(),
		es.baseURL, es.baseURL,
	)
	return subject, body
}

// OrderCancelled renders the cancellation notice for an order.
func (es *EmailService) OrderCancelled(order *models.Order) (subject, body string) {
	subject = fmt.Sprintf("Order Cancelled - %s", order.OrderNumber)
	body = fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Your order <strong>%s</strong> has been cancelled. Any payment of %s will be refunded to your %s card ending in %s.",
		html.EscapeString(order.ShippingAddress.FullName),
		order.OrderNumber,
		orderview.FormatAmount(order.Total),
		order.PaymentMethod,
		order.PaymentLast4,
	)
	return subject, body
}

// OrderStatusChanged renders the notice sent when an order moves forward.
func (es *EmailService) OrderStatusChanged(order *models.Order) (subject, body string) {
	subject = fmt.Sprintf("Your order %s is %s", order.OrderNumber, order.Status)
	body = fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Your order <strong>%s</strong> is now <strong>%s</strong>.",
		html.EscapeString(order.ShippingAddress.FullName), order.OrderNumber, order.Status,
	)
	return subject, body
}

func stripTags(s string) string {
	var b strings.Builder
	in := false
	for _, r := range s {
		switch {
		case r == '<':
			in = true
		case r == '>':
			in = false
		case !in:
			b.WriteRune(r)
		}
	}
	return html.UnescapeString(b.String())
}
