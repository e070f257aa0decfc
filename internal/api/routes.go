package api

import (
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gurkanbulca/grievanceportal/internal/api/handlers"
	"github.com/gurkanbulca/grievanceportal/internal/middleware"
	"github.com/gurkanbulca/grievanceportal/internal/models"
	"github.com/gurkanbulca/grievanceportal/internal/service"
	"github.com/gurkanbulca/grievanceportal/pkg/metrics"
)

//go:embed templates/*.html
var templateFS embed.FS

// Dependencies are the services the router exposes.
type Dependencies struct {
	Logger           *zap.Logger
	Metrics          *metrics.Collector
	AuthService      *service.AuthService
	GrievanceService *service.GrievanceService
	ChatbotService   *service.ChatbotService
	SecurityLogger   *service.SecurityLogger
	DB               handlers.Pinger
	LoginLimiter     *middleware.LoginLimiter
	CookieSecure     bool
	ReleaseMode      bool
}

type Router struct {
	engine           *gin.Engine
	logger           *zap.Logger
	metrics          *metrics.Collector
	authHandler      *handlers.AuthHandler
	grievanceHandler *handlers.GrievanceHandler
	chatbotHandler   *handlers.ChatbotHandler
	healthHandler    *handlers.HealthHandler
	authMiddleware   *middleware.AuthMiddleware
	reqMiddleware    *middleware.RequestMiddleware
	validator        *middleware.RequestValidator
	loginLimiter     *middleware.LoginLimiter
}

// ParseTemplates loads the embedded page templates.
func ParseTemplates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"lower": strings.ToLower,
	}).ParseFS(templateFS, "templates/*.html")
}

func NewRouter(deps Dependencies) (*Router, error) {
	if deps.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	tmpl, err := ParseTemplates()
	if err != nil {
		return nil, err
	}
	engine.SetHTMLTemplate(tmpl)

	if deps.LoginLimiter == nil {
		deps.LoginLimiter = middleware.NewLoginLimiter(5, 5)
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewCollector()
	}

	var reporter middleware.AccessReporter
	if deps.SecurityLogger != nil {
		reporter = deps.SecurityLogger
	}

	return &Router{
		engine:           engine,
		logger:           deps.Logger,
		metrics:          deps.Metrics,
		authHandler:      handlers.NewAuthHandler(deps.AuthService, deps.CookieSecure, deps.Logger),
		grievanceHandler: handlers.NewGrievanceHandler(deps.GrievanceService, deps.Logger),
		chatbotHandler:   handlers.NewChatbotHandler(deps.ChatbotService, deps.Logger),
		healthHandler:    handlers.NewHealthHandler(deps.DB, deps.Logger),
		authMiddleware:   middleware.NewAuthMiddleware(deps.AuthService, reporter),
		reqMiddleware:    middleware.NewRequestMiddleware(deps.Logger, deps.Metrics),
		validator:        middleware.NewRequestValidator(nil),
		loginLimiter:     deps.LoginLimiter,
	}, nil
}

func (r *Router) SetupRoutes() {
	r.engine.Use(middleware.ContextExtractor())
	r.engine.Use(r.reqMiddleware.LogRequest())
	r.engine.Use(r.reqMiddleware.RecoverPanic())
	r.engine.Use(r.validator.LimitBody())
	r.engine.Use(r.authMiddleware.LoadSession())

	r.engine.GET("/healthz", r.healthHandler.Health)
	r.engine.GET("/metrics", gin.WrapH(r.metrics.Handler()))

	r.engine.GET("/", r.authHandler.Index)
	r.engine.POST("/login",
		r.validator.LoginFields(r.authHandler.RejectLogin),
		r.loginLimiter.Middleware(r.authHandler.Throttled),
		r.authHandler.Login)
	r.engine.GET("/logout", r.authHandler.Logout)
	r.engine.POST("/logout", r.authHandler.Logout)

	toLogin := middleware.RedirectTo("/")
	unauthorized := middleware.JSONUnauthorized()

	r.engine.GET("/portal", r.authMiddleware.RequireRole(toLogin, models.RoleWife), r.grievanceHandler.WifePortal)
	r.engine.POST("/submit_grievance",
		r.authMiddleware.RequireRole(middleware.RedirectTo("/portal"), models.RoleWife),
		r.grievanceHandler.Submit)

	r.engine.GET("/husband-portal", r.authMiddleware.RequireRole(toLogin, models.RoleHusband), r.grievanceHandler.HusbandPortal)
	r.engine.POST("/update_grievance",
		r.authMiddleware.RequireRole(unauthorized, models.RoleHusband),
		r.validator.RequireJSON(),
		r.grievanceHandler.Update)

	r.engine.GET("/api/grievances", r.authMiddleware.RequireRole(unauthorized), r.grievanceHandler.List)
	r.engine.POST("/chatbot",
		r.authMiddleware.RequireRole(unauthorized),
		r.validator.RequireJSON(),
		r.chatbotHandler.Chat)

	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
