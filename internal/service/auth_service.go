// internal/service/auth_service.go
package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/gurkanbulca/grievanceportal/internal/models"
	"github.com/gurkanbulca/grievanceportal/pkg/auth"
	"github.com/gurkanbulca/grievanceportal/pkg/metrics"
)

// ErrInvalidCredentials is returned for an unknown username and for a wrong
// password alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidSession is returned when a session token is missing, forged,
// expired or names an account that no longer exists.
var ErrInvalidSession = errors.New("invalid session")

// AccountSpec configures one fixed login. Exactly one of PasswordHash and
// Password is normally set; the hash wins when both are.
type AccountSpec struct {
	Username     string
	Role         models.Role
	PasswordHash string
	Password     string
}

// LoginResult is a successful login.
type LoginResult struct {
	Account *models.Account
	Token   string
}

type AuthService struct {
	accounts        map[string]*models.Account
	dummyHash       string
	passwordManager *auth.PasswordManager
	sessionManager  *auth.SessionManager
	securityLogger  *SecurityLogger
	metrics         *metrics.Collector
	logger          *zap.Logger
}

// NewAuthService builds the account table, hashing any plaintext passwords.
func NewAuthService(
	specs []AccountSpec,
	passwordManager *auth.PasswordManager,
	sessionManager *auth.SessionManager,
	securityLogger *SecurityLogger,
	m *metrics.Collector,
	logger *zap.Logger,
) (*AuthService, error) {
	s := &AuthService{
		accounts:        make(map[string]*models.Account, len(specs)),
		passwordManager: passwordManager,
		sessionManager:  sessionManager,
		securityLogger:  securityLogger,
		metrics:         m,
		logger:          logger.With(zap.String("component", "auth")),
	}

	for _, spec := range specs {
		if spec.Username == "" {
			return nil, errors.New("account username is required")
		}
		if !spec.Role.Valid() {
			return nil, fmt.Errorf("account %s: invalid role %q", spec.Username, spec.Role)
		}
		if _, dup := s.accounts[spec.Username]; dup {
			return nil, fmt.Errorf("account %s configured twice", spec.Username)
		}

		hash := spec.PasswordHash
		switch {
		case hash != "":
			if !auth.IsHash(hash) {
				return nil, fmt.Errorf("account %s: password hash is not a bcrypt hash", spec.Username)
			}
		case spec.Password != "":
			var err error
			hash, err = passwordManager.HashPassword(spec.Password)
			if err != nil {
				return nil, fmt.Errorf("account %s: %w", spec.Username, err)
			}
		default:
			return nil, fmt.Errorf("account %s: no password configured", spec.Username)
		}

		s.accounts[spec.Username] = &models.Account{
			Username:     spec.Username,
			Role:         spec.Role,
			PasswordHash: hash,
		}
	}

	dummy, err := passwordManager.HashPassword("no-such-account-0")
	if err != nil {
		return nil, fmt.Errorf("dummy hash: %w", err)
	}
	s.dummyHash = dummy

	return s, nil
}

// Authenticate checks a username and password. A bcrypt comparison runs even
// for unknown usernames so response time does not reveal which accounts exist.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.Account, error) {
	account, ok := s.accounts[username]
	hash := s.dummyHash
	if ok {
		hash = account.PasswordHash
	}

	err := s.passwordManager.ComparePassword(hash, password)
	if !ok || err != nil {
		return nil, ErrInvalidCredentials
	}
	return account, nil
}

// Login authenticates and issues a session token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	account, err := s.Authenticate(ctx, username, password)
	if err != nil {
		s.recordLogin("failed")
		_ = s.securityLogger.LogLoginFailed(ctx, username, "invalid credentials")
		return nil, err
	}

	token, err := s.sessionManager.Issue(account.Username, string(account.Role))
	if err != nil {
		s.recordLogin("error")
		s.logger.Error("Failed to issue session", zap.String("username", account.Username), zap.Error(err))
		return nil, fmt.Errorf("issue session: %w", err)
	}

	s.recordLogin("success")
	_ = s.securityLogger.LogLoginSuccess(ctx, account.Username)
	return &LoginResult{Account: account, Token: token}, nil
}

// ValidateSession resolves a session token to its account.
func (s *AuthService) ValidateSession(token string) (*models.Account, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}

	claims, err := s.sessionManager.Validate(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	account, ok := s.accounts[claims.Username]
	if !ok || string(account.Role) != claims.Role {
		return nil, ErrInvalidSession
	}
	return account, nil
}

// Logout records the end of a session. The cookie itself is cleared by the caller.
func (s *AuthService) Logout(ctx context.Context, username string) {
	if username == "" {
		return
	}
	_ = s.securityLogger.LogLogout(ctx, username)
}

// ReportThrottled records a login attempt rejected by the rate limiter.
func (s *AuthService) ReportThrottled(ctx context.Context, username string) {
	s.recordLogin("throttled")
	_ = s.securityLogger.LogSuspiciousActivity(ctx, username, "Too many login attempts from this address")
}

// SessionMaxAge is the cookie lifetime of a new session in seconds.
func (s *AuthService) SessionMaxAge() int {
	return int(s.sessionManager.Duration().Seconds())
}

func (s *AuthService) recordLogin(result string) {
	if s.metrics != nil {
		s.metrics.RecordLogin(result)
	}
}
