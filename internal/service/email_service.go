package service

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"quizhub/internal/config"
)

// EmailService sends transactional email through Amazon SES. When no
// sender address is configured the service logs messages instead of
// sending them, which keeps local development working without AWS.
type EmailService struct {
	client    *sesv2.Client
	fromEmail string
	fromName  string
	baseURL   string
	enabled   bool
}

// NewEmailService creates an email service from the application config
func NewEmailService(cfg *config.Config) (*EmailService, error) {
	s := &EmailService{
		fromEmail: cfg.SESFromEmail,
		fromName:  cfg.SESFromName,
		baseURL:   cfg.AppBaseURL,
	}

	if cfg.SESFromEmail == "" {
		log.Println("Email sending disabled: SES_FROM_EMAIL not configured")
		return s, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s.client = sesv2.NewFromConfig(awsCfg)
	s.enabled = true
	return s, nil
}

// SendPasswordReset emails a reset link containing the signed token
func (s *EmailService) SendPasswordReset(ctx context.Context, toEmail, token string) error {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.baseURL, token)

	if !s.enabled {
		log.Printf("Email disabled, reset link for %s: %s", toEmail, resetURL)
		return nil
	}

	subject := "Reset your QuizHub password"
	body := fmt.Sprintf(
		"Hello,\r\n\r\n"+
			"A password reset was requested for your QuizHub account.\r\n"+
			"Follow this link to choose a new password:\r\n\r\n%s\r\n\r\n"+
			"The link expires in one hour. If you did not request a reset,\r\n"+
			"you can ignore this message.\r\n",
		resetURL)

	return s.send(ctx, toEmail, subject, body)
}

func (s *EmailService) send(ctx context.Context, toEmail, subject, body string) error {
	from := s.fromEmail
	if s.fromName != "" {
		from = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}
	return nil
}
