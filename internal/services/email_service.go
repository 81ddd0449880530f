package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	pkglogger "github.com/suhejbmusliu/Full-Stack-Blog-Post/pkg/logger"
)

// EmailService defines the interface for outbound mail.
type EmailService interface {
	SendPasswordReset(ctx context.Context, email, rawToken string) error
	SendTwoFactorReset(ctx context.Context, email, rawToken string) error
	SendContactMessage(ctx context.Context, fromName, fromEmail, subject, body string) error
}

// AWSSESEmailService sends emails using AWS SES.
type AWSSESEmailService struct {
	sesClient   *ses.Client
	fromAddress string
	contactTo   string
	frontendURL string
	logger      *slog.Logger
}

func NewAWSSESEmailService(region, fromAddress, contactTo, frontendURL string, logger *slog.Logger) (*AWSSESEmailService, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESEmailService{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		contactTo:   contactTo,
		frontendURL: frontendURL,
		logger:      logger,
	}, nil
}

// SendPasswordReset mails a reset link embedding the raw token and email.
func (s *AWSSESEmailService) SendPasswordReset(ctx context.Context, email, rawToken string) error {
	link := fmt.Sprintf("%s/admin/reset-password?token=%s&email=%s",
		s.frontendURL, url.QueryEscape(rawToken), url.QueryEscape(email))

	textBody := fmt.Sprintf(`A password reset was requested for your account.

Open the link below to choose a new password. The link expires in 30 minutes.

%s

If you did not request this, you can ignore this email. Your password will not change.
`, link)

	htmlBody := fmt.Sprintf(`<p>A password reset was requested for your account.</p>
<p>Open the link below to choose a new password. The link expires in 30 minutes.</p>
<p><a href="%s">Reset your password</a></p>
<p>If you did not request this, you can ignore this email. Your password will not change.</p>`, link)

	return s.send(ctx, email, "Password reset", htmlBody, textBody)
}

// SendTwoFactorReset mails a 2FA recovery link for admins locked out of
// their authenticator.
func (s *AWSSESEmailService) SendTwoFactorReset(ctx context.Context, email, rawToken string) error {
	link := fmt.Sprintf("%s/admin/reset-2fa?token=%s&email=%s",
		s.frontendURL, url.QueryEscape(rawToken), url.QueryEscape(email))

	textBody := fmt.Sprintf(`Two-factor authentication recovery was requested for your account.

Open the link below to remove two-factor authentication so you can sign in again. The link expires in 30 minutes.

%s

If you did not request this, you can ignore this email and your two-factor settings will stay as they are.
`, link)

	htmlBody := fmt.Sprintf(`<p>Two-factor authentication recovery was requested for your account.</p>
<p>Open the link below to remove two-factor authentication so you can sign in again. The link expires in 30 minutes.</p>
<p><a href="%s">Recover your account</a></p>
<p>If you did not request this, you can ignore this email and your two-factor settings will stay as they are.</p>`, link)

	return s.send(ctx, email, "Two-factor authentication recovery", htmlBody, textBody)
}

// SendContactMessage relays a public contact-form submission to the site
// inbox.
func (s *AWSSESEmailService) SendContactMessage(ctx context.Context, fromName, fromEmail, subject, body string) error {
	textBody := fmt.Sprintf("From: %s <%s>\n\n%s\n", fromName, fromEmail, body)
	htmlBody := fmt.Sprintf("<p><strong>From:</strong> %s &lt;%s&gt;</p><p>%s</p>", fromName, fromEmail, body)

	return s.send(ctx, s.contactTo, "Contact form: "+subject, htmlBody, textBody)
}

func (s *AWSSESEmailService) send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data: aws.String(htmlBody),
				},
				Text: &types.Content{
					Data: aws.String(textBody),
				},
			},
		},
	}

	result, err := s.sesClient.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("failed to send email via SES",
			slog.String("email", pkglogger.SanitizedEmail(to)),
			slog.String("subject", subject),
			slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("email sent",
		slog.String("email", pkglogger.SanitizedEmail(to)),
		slog.String("message_id", aws.ToString(result.MessageId)))
	return nil
}
