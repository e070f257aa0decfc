// internal/middleware/context_extractor.go
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextKeys for storing request metadata
type ContextKey string

const (
	ContextKeyRequestID ContextKey = "request_id"
	ContextKeyIPAddress ContextKey = "ip_address"
	ContextKeyUserAgent ContextKey = "user_agent"
	ContextKeyUsername  ContextKey = "username"
	ContextKeyUserRole  ContextKey = "user_role"

	// HeaderRequestID is echoed back on every response.
	HeaderRequestID = "X-Request-ID"
)

// ContextExtractor assigns a request ID and copies client metadata into the
// request context so services can read it without depending on gin.
func ContextExtractor() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.New().String()
		}
		c.Header(HeaderRequestID, requestID)

		ctx := c.Request.Context()
		ctx = context.WithValue(ctx, ContextKeyRequestID, requestID)
		ctx = context.WithValue(ctx, ContextKeyIPAddress, c.ClientIP())
		if ua := c.Request.UserAgent(); ua != "" {
			ctx = context.WithValue(ctx, ContextKeyUserAgent, ua)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// WithSession stores the authenticated identity in ctx.
func WithSession(ctx context.Context, username, role string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyUsername, username)
	return context.WithValue(ctx, ContextKeyUserRole, role)
}

// Helper functions to extract values from context

// GetRequestIDFromContext extracts the request ID from context
func GetRequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return id
	}
	return ""
}

// GetIPAddressFromContext extracts IP address from context
func GetIPAddressFromContext(ctx context.Context) string {
	if ip, ok := ctx.Value(ContextKeyIPAddress).(string); ok {
		return ip
	}
	return ""
}

// GetUserAgentFromContext extracts user agent from context
func GetUserAgentFromContext(ctx context.Context) string {
	if ua, ok := ctx.Value(ContextKeyUserAgent).(string); ok {
		return ua
	}
	return ""
}

// GetUsernameFromContext extracts the logged-in username from context
func GetUsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(ContextKeyUsername).(string)
	return username, ok && username != ""
}

// GetUserRoleFromContext extracts the logged-in role from context
func GetUserRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(ContextKeyUserRole).(string)
	return role, ok && role != ""
}

// ClientInfo is everything known about the caller of a request.
type ClientInfo struct {
	RequestID string
	IPAddress string
	UserAgent string
	Username  string
	UserRole  string
}

// GetClientInfoFromContext extracts all client information from context
func GetClientInfoFromContext(ctx context.Context) *ClientInfo {
	info := &ClientInfo{
		RequestID: GetRequestIDFromContext(ctx),
		IPAddress: GetIPAddressFromContext(ctx),
		UserAgent: GetUserAgentFromContext(ctx),
	}

	if username, ok := GetUsernameFromContext(ctx); ok {
		info.Username = username
	}

	if role, ok := GetUserRoleFromContext(ctx); ok {
		info.UserRole = role
	}

	return info
}
