// internal/service/chatbot_service.go
package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/gurkanbulca/grievanceportal/pkg/llm"
	"github.com/gurkanbulca/grievanceportal/pkg/metrics"
)

const (
	// ChatbotFallback is returned whenever the model cannot answer.
	ChatbotFallback = "Sorry, I had trouble connecting to my thoughts. Try again?"

	maxChatMessageLength = 2000

	counselorPrompt = `You are a caring and supportive AI counselor helping someone work through their feelings and thoughts rationally.
Your goal is to:
1. Listen empathetically to their concerns
2. Help them think through situations rationally
3. Provide gentle guidance and perspective
4. Encourage healthy communication in relationships
5. Be warm, understanding, and non-judgmental

Keep responses concise but meaningful, and always end with encouragement or a thoughtful question to help them reflect further.`
)

// ChatbotService relays one message at a time to the counselor model. No
// conversation history is kept.
type ChatbotService struct {
	generator llm.Generator
	timeout   time.Duration
	metrics   *metrics.Collector
	logger    *zap.Logger
}

// NewChatbotService accepts a nil generator, in which case every request gets
// the fallback answer.
func NewChatbotService(generator llm.Generator, timeout time.Duration, m *metrics.Collector, logger *zap.Logger) *ChatbotService {
	return &ChatbotService{
		generator: generator,
		timeout:   timeout,
		metrics:   m,
		logger:    logger.With(zap.String("component", "chatbot")),
	}
}

// Respond answers message. Only invalid input is reported as an error.
func (s *ChatbotService) Respond(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", newValidationError("message", "message is required")
	}
	if utf8.RuneCountInString(message) > maxChatMessageLength {
		return "", newValidationError("message", "message must be at most 2000 characters")
	}

	if s.generator == nil {
		s.fallback(&IntegrationError{Integration: "chatbot", Err: llm.ErrNoAPIKey})
		return ChatbotFallback, nil
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	answer, err := s.generator.Generate(ctx, BuildCounselorPrompt(message))
	if err != nil {
		s.fallback(&IntegrationError{Integration: "chatbot", Err: err})
		return ChatbotFallback, nil
	}

	s.record("ok")
	s.logger.Debug("Chatbot answered", zap.Duration("duration", time.Since(start)))
	return answer, nil
}

// BuildCounselorPrompt prefixes the user's message with the counselor instructions.
func BuildCounselorPrompt(message string) string {
	return counselorPrompt + "\n\nUser: " + message
}

func (s *ChatbotService) fallback(err error) {
	s.record("fallback")
	s.logger.Warn("Chatbot unavailable, using fallback", zap.Error(err))
}

func (s *ChatbotService) record(result string) {
	if s.metrics != nil {
		s.metrics.RecordChatbot(result)
	}
}
