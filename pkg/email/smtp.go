// pkg/email/smtp.go
package email

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/hex"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"mime"
	"net"
	"net/smtp"
	"sync"
	"text/template"
	"time"
)

// ErrNotConfigured is returned when SMTP credentials or the recipient are missing.
var ErrNotConfigured = errors.New("email: smtp not configured")

// SMTPEmailService implements EmailService using SMTP
type SMTPEmailService struct {
	config    *Config
	templates *Templates
	auth      smtp.Auth
}

// NewSMTPEmailService creates a new SMTP email service
func NewSMTPEmailService(config *Config) *SMTPEmailService {
	if config.AppName == "" {
		config.AppName = "Grievance Management System"
	}
	if config.FromEmail == "" {
		config.FromEmail = config.SMTPUsername
	}
	auth := smtp.PlainAuth("", config.SMTPUsername, config.SMTPPassword, config.SMTPHost)

	return &SMTPEmailService{
		config:    config,
		templates: NewTemplates(),
		auth:      auth,
	}
}

// Enabled reports whether credentials and a recipient are configured.
func (s *SMTPEmailService) Enabled() bool {
	return s.config.SMTPHost != "" &&
		s.config.SMTPUsername != "" &&
		s.config.SMTPPassword != "" &&
		s.config.Recipient != ""
}

// SendGrievanceNotification tells the recipient about a newly submitted grievance
func (s *SMTPEmailService) SendGrievanceNotification(ctx context.Context, data *GrievanceData) error {
	if !s.Enabled() {
		return ErrNotConfigured
	}
	data = s.withDefaults(data)

	message, err := s.render(s.config.Recipient, s.templates.NewGrievance, data)
	if err != nil {
		return err
	}
	return s.send(ctx, s.config.Recipient, message)
}

func (s *SMTPEmailService) withDefaults(data *GrievanceData) *GrievanceData {
	out := *data
	if out.RecipientName == "" {
		out.RecipientName = s.config.RecipientName
	}
	if out.AppName == "" {
		out.AppName = s.config.AppName
	}
	if out.SubmittedAt.IsZero() {
		out.SubmittedAt = time.Now()
	}
	return &out
}

// render builds the full MIME message for a template
func (s *SMTPEmailService) render(to string, tmpl EmailTemplate, data *GrievanceData) ([]byte, error) {
	subject, err := executeText(tmpl.Subject, data)
	if err != nil {
		return nil, fmt.Errorf("execute subject template: %w", err)
	}

	textBody, err := executeText(tmpl.TextBody, data)
	if err != nil {
		return nil, fmt.Errorf("execute text template: %w", err)
	}

	htmlTmpl, err := htmltemplate.New("email").Parse(tmpl.HTMLBody)
	if err != nil {
		return nil, fmt.Errorf("parse HTML template: %w", err)
	}
	var htmlBuf bytes.Buffer
	if err := htmlTmpl.Execute(&htmlBuf, data); err != nil {
		return nil, fmt.Errorf("execute HTML template: %w", err)
	}

	return buildMIMEMessage(
		s.config.FromEmail,
		s.config.FromName,
		to,
		subject,
		textBody,
		htmlBuf.String(),
		generateBoundary(),
	), nil
}

// send delivers a message over SMTP, upgrading to TLS when the server offers it.
func (s *SMTPEmailService) send(ctx context.Context, to string, message []byte) error {
	addr := net.JoinHostPort(s.config.SMTPHost, fmt.Sprintf("%d", s.config.SMTPPort))

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial SMTP server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.config.SMTPHost)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.config.SMTPHost}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	if ok, _ := client.Extension("AUTH"); ok {
		if err := client.Auth(s.auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(message); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close message: %w", err)
	}

	return client.Quit()
}

func executeText(tmpl string, data any) (string, error) {
	t, err := template.New("email").Parse(tmpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// generateBoundary generates a random boundary for MIME messages
func generateBoundary() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// buildMIMEMessage builds a MIME email message with both text and HTML parts
func buildMIMEMessage(from, fromName, to, subject, textBody, htmlBody, boundary string) []byte {
	message := fmt.Sprintf("From: %s <%s>\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: multipart/alternative; boundary=\"%s\"\r\n"+
		"\r\n"+
		"--%s\r\n"+
		"Content-Type: text/plain; charset=UTF-8\r\n"+
		"Content-Transfer-Encoding: 8bit\r\n"+
		"\r\n"+
		"%s\r\n"+
		"\r\n"+
		"--%s\r\n"+
		"Content-Type: text/html; charset=UTF-8\r\n"+
		"Content-Transfer-Encoding: 8bit\r\n"+
		"\r\n"+
		"%s\r\n"+
		"\r\n"+
		"--%s--\r\n",
		mime.QEncoding.Encode("utf-8", fromName), from, to,
		mime.QEncoding.Encode("utf-8", subject),
		boundary, boundary, textBody, boundary, htmlBody, boundary)

	return []byte(message)
}

// MockEmailService implements EmailService for testing
type MockEmailService struct {
	mu         sync.Mutex
	SentEmails []SentEmail
	// Err, when set, is returned from every send.
	Err      error
	Disabled bool
}

// SentEmail represents an email that was sent via MockEmailService
type SentEmail struct {
	To       string
	Template string
	Data     *GrievanceData
	SentAt   time.Time
}

// NewMockEmailService creates a new mock email service
func NewMockEmailService() *MockEmailService {
	return &MockEmailService{
		SentEmails: make([]SentEmail, 0),
	}
}

func (m *MockEmailService) Enabled() bool {
	return !m.Disabled
}

// SendGrievanceNotification mock implementation
func (m *MockEmailService) SendGrievanceNotification(ctx context.Context, data *GrievanceData) error {
	if m.Disabled {
		return ErrNotConfigured
	}
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SentEmails = append(m.SentEmails, SentEmail{
		To:       "recipient",
		Template: "new_grievance",
		Data:     data,
		SentAt:   time.Now(),
	})
	return nil
}

// GetSentEmails returns all sent emails (for testing)
func (m *MockEmailService) GetSentEmails() []SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentEmail(nil), m.SentEmails...)
}

// GetLastSentEmail returns the last sent email (for testing)
func (m *MockEmailService) GetLastSentEmail() *SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.SentEmails) == 0 {
		return nil
	}
	return &m.SentEmails[len(m.SentEmails)-1]
}

// Clear clears all sent emails (for testing)
func (m *MockEmailService) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SentEmails = make([]SentEmail, 0)
}
