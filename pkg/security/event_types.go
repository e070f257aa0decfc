// pkg/security/event_types.go
package security

import (
	"fmt"
)

// EventType names a security-relevant occurrence.
type EventType string

const (
	EventTypeLoginSuccess       EventType = "login_success"
	EventTypeLoginFailed        EventType = "login_failed"
	EventTypeLogout             EventType = "logout"
	EventTypeUnauthorizedAccess EventType = "unauthorized_access"
	EventTypeSecurityAlert      EventType = "security_alert"
	EventTypeSuspiciousActivity EventType = "suspicious_activity"
)

// Severity grades an event.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Event is a single security event ready to be written to the log.
type Event struct {
	Type        EventType
	Severity    Severity
	Username    string
	Role        string
	Description string
	IPAddress   string
	UserAgent   string
	RequestID   string
}

// ParseEventType converts a string to an EventType
func ParseEventType(eventType string) (EventType, error) {
	et := EventType(eventType)
	for _, valid := range ValidEventTypes() {
		if et == valid {
			return et, nil
		}
	}
	return "", fmt.Errorf("unknown event type: %s", eventType)
}

// ParseSeverity converts a string to a Severity
func ParseSeverity(severity string) (Severity, error) {
	switch s := Severity(severity); s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return s, nil
	default:
		return "", fmt.Errorf("unknown severity: %s", severity)
	}
}

// ValidEventTypes returns all valid event types
func ValidEventTypes() []EventType {
	return []EventType{
		EventTypeLoginSuccess,
		EventTypeLoginFailed,
		EventTypeLogout,
		EventTypeUnauthorizedAccess,
		EventTypeSecurityAlert,
		EventTypeSuspiciousActivity,
	}
}

// ValidSeverities returns all valid severities
func ValidSeverities() []Severity {
	return []Severity{
		SeverityLow,
		SeverityMedium,
		SeverityHigh,
		SeverityCritical,
	}
}

// IsValidEventType checks if the event type string is valid
func IsValidEventType(eventType string) bool {
	_, err := ParseEventType(eventType)
	return err == nil
}

// IsValidSeverity checks if the severity string is valid
func IsValidSeverity(severity string) bool {
	_, err := ParseSeverity(severity)
	return err == nil
}
