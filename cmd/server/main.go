// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/gurkanbulca/grievanceportal/internal/api"
	"github.com/gurkanbulca/grievanceportal/internal/config"
	"github.com/gurkanbulca/grievanceportal/internal/database"
	"github.com/gurkanbulca/grievanceportal/internal/middleware"
	"github.com/gurkanbulca/grievanceportal/internal/models"
	"github.com/gurkanbulca/grievanceportal/internal/repository"
	"github.com/gurkanbulca/grievanceportal/internal/service"
	"github.com/gurkanbulca/grievanceportal/pkg/auth"
	"github.com/gurkanbulca/grievanceportal/pkg/email"
	"github.com/gurkanbulca/grievanceportal/pkg/llm"
	"github.com/gurkanbulca/grievanceportal/pkg/logger"
	"github.com/gurkanbulca/grievanceportal/pkg/metrics"
	"github.com/gurkanbulca/grievanceportal/pkg/sms"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.ValidateConfig(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	zapLogger, err := logger.NewLogger(cfg.Server.Environment, cfg.Server.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	if err := run(cfg, zapLogger); err != nil {
		zapLogger.Fatal("Server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zapLogger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewSQLiteDB(ctx, database.Config{
		Path:        cfg.Database.Path,
		BusyTimeout: cfg.Database.BusyTimeout,
		AutoMigrate: cfg.Database.AutoMigrate,
	}, zapLogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("Failed to close database", zap.Error(err))
		}
	}()

	collector := metrics.NewCollector()
	grievanceRepo := repository.NewGrievanceRepository(db)

	smsSender := sms.NewTwilioSender(cfg.ToSMSConfig())
	if !smsSender.Enabled() {
		zapLogger.Warn("Twilio credentials missing, SMS notifications disabled")
	}

	var emailService email.EmailService
	if cfg.Email.TestingMode {
		zapLogger.Info("Using mock email service")
		emailService = email.NewMockEmailService()
	} else {
		emailService = email.NewSMTPEmailService(cfg.ToEmailConfig())
		if !emailService.Enabled() {
			zapLogger.Warn("SMTP credentials missing, email notifications disabled")
		}
	}

	// A failed client stays a nil interface so the chatbot falls back.
	var generator llm.Generator
	if client, err := llm.NewGeminiClient(cfg.ToLLMConfig()); err != nil {
		zapLogger.Warn("Chatbot disabled", zap.Error(err))
	} else {
		generator = client
	}

	securityLogger := service.NewSecurityLogger(service.NewSecurityService(zapLogger))

	authService, err := service.NewAuthService(
		[]service.AccountSpec{
			accountSpec(cfg.Wife, models.RoleWife),
			accountSpec(cfg.Husband, models.RoleHusband),
		},
		auth.NewPasswordManager(),
		auth.NewSessionManager(cfg.Session.Secret, cfg.Session.Duration),
		securityLogger,
		collector,
		zapLogger,
	)
	if err != nil {
		return err
	}

	notifier := service.NewNotifier(smsSender, emailService, cfg.SMS.Timeout, cfg.Email.RecipientName, collector, zapLogger)

	router, err := api.NewRouter(api.Dependencies{
		Logger:           zapLogger,
		Metrics:          collector,
		AuthService:      authService,
		GrievanceService: service.NewGrievanceService(grievanceRepo, notifier, collector, zapLogger),
		ChatbotService:   service.NewChatbotService(generator, cfg.Chatbot.Timeout, collector, zapLogger),
		SecurityLogger:   securityLogger,
		DB:               grievanceRepo,
		LoginLimiter:     middleware.NewLoginLimiter(cfg.Security.LoginRatePerMinute, cfg.Security.LoginBurst),
		CookieSecure:     cfg.Session.CookieSecure,
		ReleaseMode:      cfg.IsProduction(),
	})
	if err != nil {
		return err
	}
	router.SetupRoutes()

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Server.HTTPPort),
		Handler:           router.GetEngine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zapLogger.Info("Grievance portal listening", zap.String("addr", srv.Addr), zap.String("environment", cfg.Server.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zapLogger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	zapLogger.Info("Server shutdown complete")
	return nil
}

func accountSpec(acct config.AccountConfig, role models.Role) service.AccountSpec {
	return service.AccountSpec{
		Username:     acct.Username,
		Role:         role,
		PasswordHash: acct.PasswordHash,
		Password:     acct.Password,
	}
}
