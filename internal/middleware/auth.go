// internal/middleware/auth.go
package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gurkanbulca/grievanceportal/internal/models"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "grievance_session"

const accountKey = "account"

// SessionValidator resolves a session token to an account.
type SessionValidator interface {
	ValidateSession(token string) (*models.Account, error)
}

// AccessReporter is told about requests rejected for lack of a role.
type AccessReporter interface {
	LogUnauthorizedAccess(ctx context.Context, path, requiredRole string) error
}

// AuthMiddleware provides authentication middleware
type AuthMiddleware struct {
	sessions SessionValidator
	reporter AccessReporter
}

// NewAuthMiddleware creates a new auth middleware. reporter may be nil.
func NewAuthMiddleware(sessions SessionValidator, reporter AccessReporter) *AuthMiddleware {
	return &AuthMiddleware{
		sessions: sessions,
		reporter: reporter,
	}
}

// LoadSession attaches the account named by a valid session cookie. Requests
// without one continue anonymously.
func (a *AuthMiddleware) LoadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		account, err := a.sessions.ValidateSession(token)
		if err != nil {
			c.Next()
			return
		}

		c.Set(accountKey, account)
		c.Request = c.Request.WithContext(WithSession(c.Request.Context(), account.Username, string(account.Role)))
		c.Next()
	}
}

// CurrentAccount returns the logged-in account, if any.
func CurrentAccount(c *gin.Context) (*models.Account, bool) {
	v, ok := c.Get(accountKey)
	if !ok {
		return nil, false
	}
	account, ok := v.(*models.Account)
	return account, ok && account != nil
}

// RequireRole rejects requests whose session does not hold one of roles.
// deny writes the rejection; RedirectTo and JSONUnauthorized cover the
// usual cases.
func (a *AuthMiddleware) RequireRole(deny gin.HandlerFunc, roles ...models.Role) gin.HandlerFunc {
	roleMap := make(map[models.Role]bool)
	for _, role := range roles {
		roleMap[role] = true
	}
	required := "any"
	if len(roles) == 1 {
		required = string(roles[0])
	}

	return func(c *gin.Context) {
		account, ok := CurrentAccount(c)
		if ok && (len(roleMap) == 0 || roleMap[account.Role]) {
			c.Next()
			return
		}

		if a.reporter != nil {
			_ = a.reporter.LogUnauthorizedAccess(c.Request.Context(), c.Request.URL.Path, required)
		}
		deny(c)
		c.Abort()
	}
}

// RedirectTo denies by sending the browser to path.
func RedirectTo(path string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Redirect(http.StatusSeeOther, path)
	}
}

// JSONUnauthorized denies with 401 and a JSON error body.
func JSONUnauthorized() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}
}
