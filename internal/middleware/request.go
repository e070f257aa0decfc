// internal/middleware/request.go
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gurkanbulca/grievanceportal/pkg/metrics"
)

type RequestMiddleware struct {
	logger  *zap.Logger
	metrics *metrics.Collector
}

func NewRequestMiddleware(logger *zap.Logger, m *metrics.Collector) *RequestMiddleware {
	return &RequestMiddleware{
		logger:  logger.With(zap.String("component", "http")),
		metrics: m,
	}
}

// LogRequest logs every completed request and records its latency.
func (rm *RequestMiddleware) LogRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		if rm.metrics != nil {
			rm.metrics.ObserveRequest(c.Request.Method, route, strconv.Itoa(status), duration)
		}

		if strings.HasPrefix(c.Request.URL.Path, "/metrics") {
			return
		}

		fields := []zap.Field{
			zap.String("request_id", GetRequestIDFromContext(c.Request.Context())),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("client_ip", c.ClientIP()),
		}
		if account, ok := CurrentAccount(c); ok {
			fields = append(fields, zap.String("username", account.Username))
		}

		switch {
		case status >= http.StatusInternalServerError:
			rm.logger.Error("HTTP Request", fields...)
		case status >= http.StatusBadRequest:
			rm.logger.Warn("HTTP Request", fields...)
		default:
			rm.logger.Info("HTTP Request", fields...)
		}
	}
}

// RecoverPanic turns a handler panic into a 500 JSON response.
func (rm *RequestMiddleware) RecoverPanic() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				rm.logger.Error("Panic recovered",
					zap.String("request_id", GetRequestIDFromContext(c.Request.Context())),
					zap.Any("error", err),
					zap.Stack("stack"))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
			}
		}()
		c.Next()
	}
}
