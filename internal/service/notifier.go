// internal/service/notifier.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gurkanbulca/grievanceportal/pkg/email"
	"github.com/gurkanbulca/grievanceportal/pkg/metrics"
	"github.com/gurkanbulca/grievanceportal/pkg/sms"
)

const (
	channelSMS   = "sms"
	channelEmail = "email"

	resultSent     = "sent"
	resultFailed   = "failed"
	resultDisabled = "disabled"
)

// GrievanceSummary is what the dispatchers need to know about a new grievance.
type GrievanceSummary struct {
	ID                int64
	GrievanceType     string
	Priority          string
	Description       string
	AdditionalContext string
	SubmittedBy       string
	SubmittedAt       time.Time
}

// NotificationOutcome records which channels delivered.
type NotificationOutcome struct {
	GrievanceID int64
	SMSSent     bool
	EmailSent   bool
	Recipient   string
}

// Message is the confirmation shown to the submitter.
func (o *NotificationOutcome) Message() string {
	switch {
	case o.SMSSent && o.EmailSent:
		return fmt.Sprintf("Your grievance has been submitted! %s has been notified via SMS and email! 💕", o.Recipient)
	case o.SMSSent:
		return fmt.Sprintf("Your grievance has been submitted and %s has been notified via SMS! 💕", o.Recipient)
	case o.EmailSent:
		return fmt.Sprintf("Your grievance has been submitted and %s has been notified via email! 💕", o.Recipient)
	default:
		return fmt.Sprintf("Your grievance has been saved! %s can view it in his portal.", o.Recipient)
	}
}

// Notifier fans a new grievance out to SMS and email. Both channels are
// best effort.
type Notifier struct {
	sms       sms.Sender
	email     email.EmailService
	timeout   time.Duration
	recipient string
	metrics   *metrics.Collector
	logger    *zap.Logger
}

func NewNotifier(smsSender sms.Sender, emailService email.EmailService, timeout time.Duration, recipient string, m *metrics.Collector, logger *zap.Logger) *Notifier {
	if recipient == "" {
		recipient = "Hubby"
	}
	return &Notifier{
		sms:       smsSender,
		email:     emailService,
		timeout:   timeout,
		recipient: recipient,
		metrics:   m,
		logger:    logger.With(zap.String("component", "notifier")),
	}
}

// NotifyNewGrievance runs both dispatchers concurrently and waits for them.
func (n *Notifier) NotifyNewGrievance(ctx context.Context, g *GrievanceSummary) *NotificationOutcome {
	outcome := &NotificationOutcome{Recipient: n.recipient}

	// Dispatchers never return errors to the group so one failure cannot
	// cancel the other.
	var eg errgroup.Group
	eg.Go(func() error {
		outcome.SMSSent = n.NotifySMS(ctx, g)
		return nil
	})
	eg.Go(func() error {
		outcome.EmailSent = n.NotifyEmail(ctx, g)
		return nil
	})
	_ = eg.Wait()

	return outcome
}

// NotifySMS sends the fixed text message. It reports false when the sender is
// disabled or delivery failed.
func (n *Notifier) NotifySMS(ctx context.Context, g *GrievanceSummary) bool {
	if n.sms == nil || !n.sms.Enabled() {
		n.record(channelSMS, resultDisabled)
		return false
	}

	ctx, cancel := n.withTimeout(ctx)
	defer cancel()

	body := fmt.Sprintf("💕 New grievance submitted by %s! Check the Husband Portal for details.", g.SubmittedBy)
	if err := n.sms.Send(ctx, body); err != nil {
		n.fail(channelSMS, g.ID, err)
		return false
	}

	n.record(channelSMS, resultSent)
	n.logger.Info("SMS notification sent", zap.Int64("grievance_id", g.ID))
	return true
}

// NotifyEmail sends the templated email. It reports false when the service is
// disabled or delivery failed.
func (n *Notifier) NotifyEmail(ctx context.Context, g *GrievanceSummary) bool {
	if n.email == nil || !n.email.Enabled() {
		n.record(channelEmail, resultDisabled)
		return false
	}

	ctx, cancel := n.withTimeout(ctx)
	defer cancel()

	err := n.email.SendGrievanceNotification(ctx, &email.GrievanceData{
		ID:                g.ID,
		GrievanceType:     g.GrievanceType,
		Priority:          g.Priority,
		Description:       g.Description,
		AdditionalContext: g.AdditionalContext,
		SubmittedBy:       g.SubmittedBy,
		SubmittedAt:       g.SubmittedAt,
		RecipientName:     n.recipient,
	})
	if err != nil {
		n.fail(channelEmail, g.ID, err)
		return false
	}

	n.record(channelEmail, resultSent)
	n.logger.Info("Email notification sent", zap.Int64("grievance_id", g.ID))
	return true
}

func (n *Notifier) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if n.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, n.timeout)
}

func (n *Notifier) fail(channel string, id int64, err error) {
	result := resultFailed
	if errors.Is(err, sms.ErrNotConfigured) || errors.Is(err, email.ErrNotConfigured) {
		result = resultDisabled
	}
	n.record(channel, result)
	n.logger.Warn("Notification failed",
		zap.Int64("grievance_id", id),
		zap.Error(&IntegrationError{Integration: channel, Err: err}))
}

func (n *Notifier) record(channel, result string) {
	if n.metrics != nil {
		n.metrics.RecordNotification(channel, result)
	}
}
