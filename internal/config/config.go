// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/gurkanbulca/grievanceportal/pkg/email"
	"github.com/gurkanbulca/grievanceportal/pkg/llm"
	"github.com/gurkanbulca/grievanceportal/pkg/sms"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Session  SessionConfig
	Wife     AccountConfig `envPrefix:"WIFE_"`
	Husband  AccountConfig `envPrefix:"HUSBAND_"`
	SMS      SMSConfig
	Email    EmailConfig
	Chatbot  ChatbotConfig
	Security SecurityConfig
}

type ServerConfig struct {
	HTTPPort        string        `env:"HTTP_PORT" envDefault:"5000"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

type DatabaseConfig struct {
	Path        string        `env:"DATABASE" envDefault:"grievances.db"`
	BusyTimeout time.Duration `env:"DB_BUSY_TIMEOUT" envDefault:"5s"`
	AutoMigrate bool          `env:"DB_AUTO_MIGRATE" envDefault:"true"`
}

type SessionConfig struct {
	Secret       string        `env:"SECRET_KEY"`
	Duration     time.Duration `env:"SESSION_DURATION" envDefault:"168h"`
	CookieSecure bool          `env:"COOKIE_SECURE" envDefault:"false"`
}

// AccountConfig describes one of the two fixed logins. PasswordHash is a
// bcrypt hash; Password is only a source that gets hashed at startup.
type AccountConfig struct {
	Username     string `env:"USERNAME"`
	PasswordHash string `env:"PASSWORD_HASH"`
	Password     string `env:"PASSWORD"`
}

type SMSConfig struct {
	AccountSID string        `env:"TWILIO_ACCOUNT_SID"`
	AuthToken  string        `env:"TWILIO_AUTH_TOKEN"`
	FromPhone  string        `env:"TWILIO_PHONE"`
	ToPhone    string        `env:"YOUR_PHONE"`
	Timeout    time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"15s"`
}

type EmailConfig struct {
	SMTPHost      string `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	SMTPPort      int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername  string `env:"GMAIL_USER"`
	SMTPPassword  string `env:"GMAIL_PASSWORD"`
	Recipient     string `env:"RECIPIENT_EMAIL"`
	FromName      string `env:"EMAIL_FROM_NAME" envDefault:"Grievance Portal"`
	RecipientName string `env:"RECIPIENT_NAME" envDefault:"Hubby"`
	TestingMode   bool   `env:"EMAIL_TESTING_MODE" envDefault:"false"`
}

type ChatbotConfig struct {
	APIKey  string        `env:"GEMINI_API_KEY"`
	Model   string        `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	BaseURL string        `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta/openai/"`
	Timeout time.Duration `env:"CHATBOT_TIMEOUT" envDefault:"30s"`
}

type SecurityConfig struct {
	LoginRatePerMinute int `env:"LOGIN_RATE_PER_MINUTE" envDefault:"5"`
	LoginBurst         int `env:"LOGIN_BURST" envDefault:"5"`
}

// Load reads the configuration from the environment. Call godotenv first
// if a .env file should be honoured.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Wife.Username == "" {
		cfg.Wife.Username = "Wifey"
	}
	if cfg.Husband.Username == "" {
		cfg.Husband.Username = "Hubby"
	}
	return cfg, nil
}

// ValidateConfig checks the settings the server cannot run without.
func (c *Config) ValidateConfig() error {
	var errs []error

	if len(c.Session.Secret) < 16 {
		errs = append(errs, errors.New("SECRET_KEY must be at least 16 characters"))
	}
	if c.Session.Duration <= 0 {
		errs = append(errs, errors.New("SESSION_DURATION must be positive"))
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		errs = append(errs, errors.New("DATABASE must not be empty"))
	}
	if strings.EqualFold(c.Wife.Username, c.Husband.Username) {
		errs = append(errs, errors.New("wife and husband usernames must differ"))
	}
	for role, acct := range map[string]AccountConfig{"WIFE": c.Wife, "HUSBAND": c.Husband} {
		if acct.PasswordHash == "" && acct.Password == "" {
			errs = append(errs, fmt.Errorf("%s_PASSWORD_HASH or %s_PASSWORD is required", role, role))
		}
	}
	if c.Security.LoginRatePerMinute <= 0 || c.Security.LoginBurst <= 0 {
		errs = append(errs, errors.New("login rate and burst must be positive"))
	}

	return errors.Join(errs...)
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// ToEmailConfig maps env settings onto the email package's config.
func (c *Config) ToEmailConfig() *email.Config {
	return &email.Config{
		SMTPHost:      c.Email.SMTPHost,
		SMTPPort:      c.Email.SMTPPort,
		SMTPUsername:  c.Email.SMTPUsername,
		SMTPPassword:  c.Email.SMTPPassword,
		FromEmail:     c.Email.SMTPUsername,
		FromName:      c.Email.FromName,
		Recipient:     c.Email.Recipient,
		RecipientName: c.Email.RecipientName,
	}
}

func (c *Config) ToSMSConfig() sms.Config {
	return sms.Config{
		AccountSID: c.SMS.AccountSID,
		AuthToken:  c.SMS.AuthToken,
		From:       c.SMS.FromPhone,
		To:         c.SMS.ToPhone,
	}
}

func (c *Config) ToLLMConfig() llm.Config {
	return llm.Config{
		APIKey:  c.Chatbot.APIKey,
		Model:   c.Chatbot.Model,
		BaseURL: c.Chatbot.BaseURL,
	}
}
