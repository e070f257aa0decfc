package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gurkanbulca/grievanceportal/internal/api/flash"
	"github.com/gurkanbulca/grievanceportal/internal/middleware"
	"github.com/gurkanbulca/grievanceportal/internal/models"
	"github.com/gurkanbulca/grievanceportal/internal/service"
)

const invalidCredentialsMessage = "Invalid credentials! Please check your username and password."

type AuthHandler struct {
	authService  *service.AuthService
	cookieSecure bool
	logger       *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, cookieSecure bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		cookieSecure: cookieSecure,
		logger:       logger.With(zap.String("handler", "auth")),
	}
}

// PortalFor is the landing page of a role.
func PortalFor(role models.Role) string {
	if role == models.RoleHusband {
		return "/husband-portal"
	}
	return "/portal"
}

// Index shows the login page, or sends a logged-in user to their portal.
func (ah *AuthHandler) Index(c *gin.Context) {
	if account, ok := middleware.CurrentAccount(c); ok {
		c.Redirect(http.StatusSeeOther, PortalFor(account.Role))
		return
	}

	data := gin.H{"Title": "Grievance Portal"}
	if notice, ok := flash.ReadAndClear(c); ok {
		data["Flash"] = notice
	}
	c.HTML(http.StatusOK, "login.html", data)
}

func (ah *AuthHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	result, err := ah.authService.Login(c.Request.Context(), username, password)
	if err != nil {
		flash.Error(c, invalidCredentialsMessage)
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	ah.setSession(c, result.Token, ah.authService.SessionMaxAge())
	c.Redirect(http.StatusSeeOther, PortalFor(result.Account.Role))
}

// RejectLogin answers a malformed login form like a failed login.
func (ah *AuthHandler) RejectLogin(c *gin.Context) {
	flash.Error(c, invalidCredentialsMessage)
	c.Redirect(http.StatusSeeOther, "/")
}

// Throttled answers a login attempt refused by the rate limiter exactly like a
// failed one.
func (ah *AuthHandler) Throttled(c *gin.Context) {
	ah.authService.ReportThrottled(c.Request.Context(), c.PostForm("username"))
	flash.Error(c, invalidCredentialsMessage)
	c.Redirect(http.StatusSeeOther, "/")
}

// Logout clears the session. POST comes from the portal's logout script and
// gets an empty 204.
func (ah *AuthHandler) Logout(c *gin.Context) {
	if account, ok := middleware.CurrentAccount(c); ok {
		ah.authService.Logout(c.Request.Context(), account.Username)
	}
	ah.setSession(c, "", -1)

	if c.Request.Method == http.MethodPost {
		c.Status(http.StatusNoContent)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (ah *AuthHandler) setSession(c *gin.Context, token string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   ah.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
