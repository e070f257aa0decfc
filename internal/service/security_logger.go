// internal/service/security_logger.go
package service

import (
	"context"

	"github.com/gurkanbulca/grievanceportal/internal/middleware"
	"github.com/gurkanbulca/grievanceportal/pkg/security"
)

// SecurityLogger provides convenience methods for logging security events
type SecurityLogger struct {
	securityService *SecurityService
}

// NewSecurityLogger creates a new security logger
func NewSecurityLogger(securityService *SecurityService) *SecurityLogger {
	return &SecurityLogger{
		securityService: securityService,
	}
}

// LogFromContext logs a security event using context information
func (sl *SecurityLogger) LogFromContext(ctx context.Context, username string, eventType security.EventType, description string, severity security.Severity) error {
	clientInfo := middleware.GetClientInfoFromContext(ctx)
	if username == "" {
		username = clientInfo.Username
	}

	return sl.securityService.LogSecurityEvent(ctx, &LogSecurityEventRequest{
		EventType:   string(eventType),
		Severity:    string(severity),
		Description: description,
		Username:    username,
		Role:        clientInfo.UserRole,
		IPAddress:   clientInfo.IPAddress,
		UserAgent:   clientInfo.UserAgent,
		RequestID:   clientInfo.RequestID,
	})
}

// Convenience methods for common security events

func (sl *SecurityLogger) LogLoginSuccess(ctx context.Context, username string) error {
	return sl.LogFromContext(ctx, username, security.EventTypeLoginSuccess,
		"User successfully logged in", security.SeverityLow)
}

func (sl *SecurityLogger) LogLoginFailed(ctx context.Context, username, reason string) error {
	return sl.LogFromContext(ctx, username, security.EventTypeLoginFailed,
		"Login failed: "+reason, security.SeverityMedium)
}

func (sl *SecurityLogger) LogLogout(ctx context.Context, username string) error {
	return sl.LogFromContext(ctx, username, security.EventTypeLogout,
		"User logged out", security.SeverityLow)
}

// LogUnauthorizedAccess records a request for a route the session may not use.
func (sl *SecurityLogger) LogUnauthorizedAccess(ctx context.Context, path, requiredRole string) error {
	return sl.LogFromContext(ctx, "", security.EventTypeUnauthorizedAccess,
		"Access to "+path+" requires role "+requiredRole, security.SeverityMedium)
}

func (sl *SecurityLogger) LogSuspiciousActivity(ctx context.Context, username, description string) error {
	return sl.LogFromContext(ctx, username, security.EventTypeSuspiciousActivity,
		description, security.SeverityHigh)
}
