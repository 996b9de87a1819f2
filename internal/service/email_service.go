package service

import (
	"context"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// sesAPI is the part of the SES client the email service calls
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     sesAPI
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	debug      bool
}

// NewEmailService creates a new email service. Without a sender address the
// service is disabled and every send is skipped.
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName, appBaseURL string, debug bool) (*EmailService, error) {
	if fromEmail == "" {
		zap.S().Infow("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, debug: debug}, nil
	}

	if debug {
		zap.S().Debugw("Initializing email service with AWS SES",
			"region", awsRegion,
			"from_email", fromEmail,
			"from_name", fromName,
			"app_base_url", appBaseURL)
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS config")
	}

	zap.S().Infow("Email service enabled", "from", fromEmail, "region", awsRegion)
	return &EmailService{
		client:     sesv2.NewFromConfig(cfg),
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
		debug:      debug,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

type reminderData struct {
	Name     string
	Streak   int
	Days     string
	StudyURL string
}

var reminderHTML = htmltemplate.Must(htmltemplate.New("reminder").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: sans-serif; color: #222; max-width: 560px; margin: 0 auto;">
	<h2 style="color: #e8890c;">Your streak is on the line</h2>
	<p>Hi {{.Name}},</p>
	<p>You have studied {{.Streak}} {{.Days}} in a row. A few reviews today keep it going.</p>
	<p><a href="{{.StudyURL}}" style="background: #e8890c; color: #fff; padding: 10px 24px; border-radius: 4px; text-decoration: none;">Study now</a></p>
	<p style="font-size: 12px; color: #777;">Sent automatically by VocabClash.</p>
</body>
</html>
`))

var reminderText = texttemplate.Must(texttemplate.New("reminder").Parse(`Hi {{.Name}},

You have studied {{.Streak}} {{.Days}} in a row. A few reviews today keep it going.

Study now: {{.StudyURL}}

Sent automatically by VocabClash.
`))

// SendStreakReminder tells a user that their daily streak ends unless they
// study today
func (s *EmailService) SendStreakReminder(ctx context.Context, toEmail, toName string, streak int) error {
	if !s.enabled {
		if s.debug {
			zap.S().Debugw("Skipping email send (service disabled)", "kind", "streak_reminder", "to", toEmail)
		}
		return nil
	}

	data := reminderData{
		Name:     toName,
		Streak:   streak,
		Days:     "days",
		StudyURL: s.appBaseURL + "/study",
	}
	if streak == 1 {
		data.Days = "day"
	}

	var htmlBody, textBody strings.Builder
	if err := reminderHTML.Execute(&htmlBody, data); err != nil {
		return errors.Wrap(err, "render reminder html")
	}
	if err := reminderText.Execute(&textBody, data); err != nil {
		return errors.Wrap(err, "render reminder text")
	}

	subject := fmt.Sprintf("Keep your %d-day streak alive", streak)
	return s.sendEmail(ctx, toEmail, subject, htmlBody.String(), textBody.String())
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return errors.Wrapf(err, "failed to send email to %s", toEmail)
	}

	if s.debug && result.MessageId != nil {
		zap.S().Debugw("SES SendEmail succeeded", "message_id", *result.MessageId)
	}
	zap.S().Infow("Email sent", "to", toEmail, "subject", subject)
	return nil
}
