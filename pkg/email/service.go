// pkg/email/service.go
package email

import (
	"context"
	"time"
)

// EmailService defines the interface for sending emails
type EmailService interface {
	SendGrievanceNotification(ctx context.Context, data *GrievanceData) error
	// Enabled reports whether the service has what it needs to deliver mail.
	Enabled() bool
}

// EmailTemplate represents an email template
type EmailTemplate struct {
	Subject  string
	HTMLBody string
	TextBody string
}

// GrievanceData contains data for template rendering
type GrievanceData struct {
	ID                int64
	GrievanceType     string
	Priority          string
	Description       string
	AdditionalContext string
	SubmittedBy       string
	SubmittedAt       time.Time
	RecipientName     string
	AppName           string
}

// Config holds email service configuration
type Config struct {
	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	FromEmail     string
	FromName      string
	Recipient     string
	RecipientName string
	AppName       string
}

// Templates holds all email templates
type Templates struct {
	NewGrievance EmailTemplate
}

// NewTemplates creates default email templates
func NewTemplates() *Templates {
	return &Templates{
		NewGrievance: EmailTemplate{
			Subject: "💕 New Grievance Submitted - Priority: {{.Priority}}",
			HTMLBody: `
<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>New Grievance</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .field { margin: 10px 0; }
        .context { background-color: #fdf2f8; border: 1px solid #fbcfe8; padding: 15px; border-radius: 5px; margin: 20px 0; }
        .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; font-size: 14px; color: #666; }
    </style>
</head>
<body>
    <div class="container">
        <p>Hi {{.RecipientName}}! 💕</p>

        <p>{{.SubmittedBy}} has submitted a new grievance that needs your attention:</p>

        <div class="field">🏷️ <strong>Type:</strong> {{.GrievanceType}}</div>
        <div class="field">🚨 <strong>Priority:</strong> {{.Priority}}</div>
        <div class="field">📝 <strong>Description:</strong> {{.Description}}</div>
        {{if .AdditionalContext}}
        <div class="context">📋 <strong>Additional Context:</strong> {{.AdditionalContext}}</div>
        {{end}}
        <div class="field">📅 <strong>Submitted:</strong> {{.SubmittedAt.Format "2006-01-02 15:04:05"}}</div>
        <div class="field">👤 <strong>Submitted by:</strong> {{.SubmittedBy}}</div>

        <p>Please check your Husband Portal to respond and update the status.</p>

        <div class="footer">
            <p>With love,<br>Your {{.AppName}} 💕</p>
        </div>
    </div>
</body>
</html>`,
			TextBody: `Hi {{.RecipientName}}! 💕

{{.SubmittedBy}} has submitted a new grievance that needs your attention:

🏷️ Type: {{.GrievanceType}}
🚨 Priority: {{.Priority}}
📝 Description: {{.Description}}
{{if .AdditionalContext}}
📋 Additional Context: {{.AdditionalContext}}
{{end}}
📅 Submitted: {{.SubmittedAt.Format "2006-01-02 15:04:05"}}
👤 Submitted by: {{.SubmittedBy}}

Please check your Husband Portal to respond and update the status.

With love,
Your {{.AppName}} 💕`,
		},
	}
}
