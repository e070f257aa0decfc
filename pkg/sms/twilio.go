// Package sms delivers short text notifications through Twilio.
package sms

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// ErrNotConfigured is returned when Twilio credentials or phone numbers are missing.
var ErrNotConfigured = errors.New("sms: twilio not configured")

// Sender sends a single text message to the configured recipient.
type Sender interface {
	Send(ctx context.Context, body string) error
	Enabled() bool
}

// Config holds Twilio credentials and the two phone numbers.
type Config struct {
	AccountSID string
	AuthToken  string
	From       string
	To         string
}

func (c Config) complete() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.From != "" && c.To != ""
}

// messageCreator is the slice of the Twilio API the sender uses.
type messageCreator interface {
	CreateMessage(params *twilioapi.CreateMessageParams) (*twilioapi.ApiV2010Message, error)
}

// TwilioSender implements Sender on the Twilio REST API.
type TwilioSender struct {
	config Config
	api    messageCreator
}

// NewTwilioSender builds a sender. With incomplete config the sender is
// returned disabled rather than failing.
func NewTwilioSender(cfg Config) *TwilioSender {
	s := &TwilioSender{config: cfg}
	if cfg.complete() {
		client := twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		})
		s.api = client.Api
	}
	return s
}

func (s *TwilioSender) Enabled() bool {
	return s.api != nil
}

// Send posts one message. The Twilio client does not accept a context, so
// cancellation is only honoured before the call starts.
func (s *TwilioSender) Send(ctx context.Context, body string) error {
	if !s.Enabled() {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetTo(s.config.To)
	params.SetFrom(s.config.From)
	params.SetBody(body)

	type result struct {
		msg *twilioapi.ApiV2010Message
		err error
	}
	done := make(chan result, 1)
	go func() {
		msg, err := s.api.CreateMessage(params)
		done <- result{msg, err}
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("send sms: %w", ctx.Err())
	case r := <-done:
		if r.err != nil {
			return fmt.Errorf("send sms: %w", r.err)
		}
		if r.msg != nil && r.msg.ErrorCode != nil {
			return fmt.Errorf("send sms: twilio error code %d", *r.msg.ErrorCode)
		}
		return nil
	}
}

// MockSender implements Sender for testing
type MockSender struct {
	mu       sync.Mutex
	Messages []string
	Err      error
	Disabled bool
}

func NewMockSender() *MockSender {
	return &MockSender{}
}

func (m *MockSender) Enabled() bool {
	return !m.Disabled
}

func (m *MockSender) Send(ctx context.Context, body string) error {
	if m.Disabled {
		return ErrNotConfigured
	}
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, body)
	return nil
}

// Sent returns a copy of the recorded messages.
func (m *MockSender) Sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Messages...)
}
