// internal/service/security_service.go
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gurkanbulca/grievanceportal/pkg/security"
)

// SecurityService writes security events to a dedicated structured log.
type SecurityService struct {
	logger *zap.Logger
}

// NewSecurityService creates a new security service
func NewSecurityService(logger *zap.Logger) *SecurityService {
	return &SecurityService{
		logger: logger.With(zap.String("component", "security")),
	}
}

// LogSecurityEvent logs a security event with proper type conversion
func (s *SecurityService) LogSecurityEvent(ctx context.Context, req *LogSecurityEventRequest) error {
	eventType, err := security.ParseEventType(req.EventType)
	if err != nil {
		return fmt.Errorf("invalid event type: %w", err)
	}

	severity, err := security.ParseSeverity(req.Severity)
	if err != nil {
		return fmt.Errorf("invalid severity: %w", err)
	}

	event := security.Event{
		Type:        eventType,
		Severity:    severity,
		Username:    req.Username,
		Role:        req.Role,
		Description: req.Description,
		IPAddress:   req.IPAddress,
		UserAgent:   req.UserAgent,
		RequestID:   req.RequestID,
	}
	s.write(event)
	return nil
}

func (s *SecurityService) write(e security.Event) {
	fields := []zap.Field{
		zap.String("event_type", string(e.Type)),
		zap.String("severity", string(e.Severity)),
	}
	if e.Username != "" {
		fields = append(fields, zap.String("username", e.Username))
	}
	if e.Role != "" {
		fields = append(fields, zap.String("role", e.Role))
	}
	if e.IPAddress != "" {
		fields = append(fields, zap.String("client_ip", e.IPAddress))
	}
	if e.UserAgent != "" {
		fields = append(fields, zap.String("user_agent", e.UserAgent))
	}
	if e.RequestID != "" {
		fields = append(fields, zap.String("request_id", e.RequestID))
	}

	if ce := s.logger.Check(levelFor(e.Severity), e.Description); ce != nil {
		ce.Write(fields...)
	}
}

func levelFor(severity security.Severity) zapcore.Level {
	switch severity {
	case security.SeverityCritical:
		return zapcore.ErrorLevel
	case security.SeverityHigh, security.SeverityMedium:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

// Request/Response types

// LogSecurityEventRequest represents a request to log a security event
type LogSecurityEventRequest struct {
	EventType   string `json:"event_type"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Username    string `json:"username,omitempty"`
	Role        string `json:"role,omitempty"`
	IPAddress   string `json:"ip_address,omitempty"`
	UserAgent   string `json:"user_agent,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}

