// internal/middleware/validation.go
package middleware

import (
	"errors"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ValidationConfig holds validation configuration
type ValidationConfig struct {
	MaxBodyBytes      int64
	MaxUsernameLength int
	MaxPasswordLength int
}

// DefaultValidationConfig returns default validation configuration
func DefaultValidationConfig() *ValidationConfig {
	return &ValidationConfig{
		MaxBodyBytes:      64 << 10,
		MaxUsernameLength: 50,
		MaxPasswordLength: 72,
	}
}

// RequestValidator rejects malformed requests before they reach a handler.
type RequestValidator struct {
	config *ValidationConfig
}

// NewRequestValidator creates a validator; nil selects the defaults.
func NewRequestValidator(config *ValidationConfig) *RequestValidator {
	if config == nil {
		config = DefaultValidationConfig()
	}
	return &RequestValidator{
		config: config,
	}
}

// LimitBody caps the request body size.
func (v *RequestValidator) LimitBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, v.config.MaxBodyBytes)
		}
		c.Next()
	}
}

// RequireJSON rejects bodies that are not declared as JSON.
func (v *RequestValidator) RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		mediaType, _, err := mime.ParseMediaType(c.GetHeader("Content-Type"))
		if err != nil || mediaType != "application/json" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Content-Type must be application/json"})
			return
		}
		c.Next()
	}
}

// LoginFields aborts with deny when the login form cannot be parsed or its
// fields are oversized.
func (v *RequestValidator) LoginFields(deny gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := c.Request.ParseMultipartForm(v.config.MaxBodyBytes)
		if err != nil && !errors.Is(err, http.ErrNotMultipart) {
			deny(c)
			c.Abort()
			return
		}
		if len(c.PostForm("username")) > v.config.MaxUsernameLength ||
			len(c.PostForm("password")) > v.config.MaxPasswordLength {
			deny(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
