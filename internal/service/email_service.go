package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/cinevault/cinevault-api/internal/config"
	"github.com/cinevault/cinevault-api/internal/constants"
	"github.com/cinevault/cinevault-api/internal/utils"
)

// ErrEmailDisabled is returned for emails that must reach the user when no
// email provider is configured.
var ErrEmailDisabled = errors.New("email delivery is not configured")

// Mailer sends account emails.
type Mailer interface {
	SendWelcome(ctx context.Context, toEmail, username string, federated bool) error
	SendResetCode(ctx context.Context, toEmail, username, code string) error
}

// sendClient is the part of the SendGrid client used here.
type sendClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// EmailService sends email through SendGrid.
type EmailService struct {
	client       sendClient
	from         *mail.Email
	supportEmail string
}

// NewMailer returns a SendGrid mailer when an API key is configured and a
// log-only mailer otherwise. Production requires the API key.
func NewMailer(cfg *config.AppConfig) (Mailer, error) {
	if cfg.Email.SendGridAPIKey == "" {
		if cfg.App.IsProduction() {
			return nil, fmt.Errorf("%w: SENDGRID_API_KEY is required in production", ErrEmailDisabled)
		}
		log.Warn().Msg("SENDGRID_API_KEY not set, emails will only be logged")
		return &LogMailer{Development: cfg.App.IsDevelopment()}, nil
	}
	return NewEmailService(sendgrid.NewSendClient(cfg.Email.SendGridAPIKey), cfg.Email.FromName, cfg.Email.FromAddress, cfg.App.SupportEmail), nil
}

// NewEmailService creates a new EmailService.
func NewEmailService(client sendClient, fromName, fromAddress, supportEmail string) *EmailService {
	return &EmailService{
		client:       client,
		from:         mail.NewEmail(fromName, fromAddress),
		supportEmail: supportEmail,
	}
}

// SendWelcome sends the greeting for a new account.
func (s *EmailService) SendWelcome(ctx context.Context, toEmail, username string, federated bool) error {
	subject, body := welcomeMessage(username, federated, s.supportEmail)
	return s.send(ctx, "welcome", toEmail, username, subject, body)
}

// SendResetCode sends a one-time password reset code.
func (s *EmailService) SendResetCode(ctx context.Context, toEmail, username, code string) error {
	subject, body := resetCodeMessage(username, code, s.supportEmail)
	return s.send(ctx, "reset_code", toEmail, username, subject, body)
}

func (s *EmailService) send(ctx context.Context, kind, toEmail, toName, subject, body string) error {
	message := mail.NewSingleEmail(s.from, subject, mail.NewEmail(toName, toEmail), body, "")

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		log.Error().Err(err).Str("kind", kind).Str("to", utils.MaskEmail(toEmail)).Msg("Failed to send email")
		return fmt.Errorf("failed to send %s email: %w", kind, err)
	}
	if response.StatusCode >= 300 {
		log.Error().
			Int("status_code", response.StatusCode).
			Str("kind", kind).
			Str("to", utils.MaskEmail(toEmail)).
			Msg("Email provider rejected message")
		return fmt.Errorf("failed to send %s email: provider returned status %d", kind, response.StatusCode)
	}

	log.Info().Int("status_code", response.StatusCode).Str("kind", kind).Str("to", utils.MaskEmail(toEmail)).Msg("Email sent")
	return nil
}

// LogMailer records emails in the log instead of sending them.
// Reset codes are never written. Outside development a reset code that
// cannot be delivered is an error, so the request does not report success.
type LogMailer struct {
	Development bool
}

// SendWelcome logs the welcome email.
func (LogMailer) SendWelcome(_ context.Context, toEmail, username string, federated bool) error {
	log.Info().
		Str("kind", "welcome").
		Str("to", utils.MaskEmail(toEmail)).
		Bool("federated", federated).
		Msg("Email delivery disabled, message dropped")
	return nil
}

// SendResetCode logs that a reset email would have been sent.
func (m LogMailer) SendResetCode(_ context.Context, toEmail, _, _ string) error {
	if !m.Development {
		log.Error().
			Str("kind", "reset_code").
			Str("to", utils.MaskEmail(toEmail)).
			Msg("Email delivery disabled, reset code not delivered")
		return ErrEmailDisabled
	}
	log.Info().
		Str("kind", "reset_code").
		Str("to", utils.MaskEmail(toEmail)).
		Msg("Email delivery disabled, message dropped")
	return nil
}

func welcomeMessage(username string, federated bool, support string) (string, string) {
	subject := fmt.Sprintf("Welcome to MovieHub, %s!", username)

	intro := "Your account has been successfully created on MovieHub!"
	if federated {
		intro = "We're thrilled to have you onboard! You've successfully joined MovieHub using your Google account."
	}

	body := fmt.Sprintf(`Hello %s,

%s

Start building your watchlist and keep track of the movies you love.

Need help? Contact us at %s

The MovieHub Team
`, username, intro, support)
	return subject, body
}

func resetCodeMessage(username, code, support string) (string, string) {
	if username == "" {
		username = "User"
	}
	body := fmt.Sprintf(`Hi %s,

We received a request to change your MovieHub account password.

Your verification code is: %s

This code will expire in %d minutes. If you didn't request a password change, please ignore this message. Your account is still secure.

Best regards,
The MovieHub Security Team
Email Support: %s
`, username, code, int(constants.ResetCodeTTL.Minutes()), support)
	return "Confirm Your Password Change Request", body
}
