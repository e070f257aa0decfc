// internal/middleware/login_limiter.go
package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// LoginLimiter keeps one token bucket per client IP.
type LoginLimiter struct {
	mu       sync.Mutex
	limiters map[string]*ipLimiter
	limit    rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLoginLimiter allows perMinute attempts per IP with the given burst.
func NewLoginLimiter(perMinute, burst int) *LoginLimiter {
	return &LoginLimiter{
		limiters: make(map[string]*ipLimiter),
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
		idle:     10 * time.Minute,
		now:      time.Now,
	}
}

// Allow consumes one attempt for ip.
func (l *LoginLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.limiters[ip]
	if !ok {
		entry = &ipLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[ip] = entry
	}
	entry.lastSeen = now
	l.cleanOldEntries(now)

	return entry.limiter.AllowN(now, 1)
}

// cleanOldEntries drops buckets that have been idle long enough to be full again.
// Caller holds l.mu.
func (l *LoginLimiter) cleanOldEntries(now time.Time) {
	expiry := now.Add(-l.idle)
	for ip, entry := range l.limiters {
		if entry.lastSeen.Before(expiry) {
			delete(l.limiters, ip)
		}
	}
}

// Middleware runs onThrottled instead of the handler once an IP is out of attempts.
func (l *LoginLimiter) Middleware(onThrottled gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			onThrottled(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
