// internal/service/test_helpers_test.go
package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"github.com/gurkanbulca/grievanceportal/internal/database"
	"github.com/gurkanbulca/grievanceportal/internal/models"
	"github.com/gurkanbulca/grievanceportal/internal/repository"
	"github.com/gurkanbulca/grievanceportal/pkg/auth"
	"github.com/gurkanbulca/grievanceportal/pkg/email"
	"github.com/gurkanbulca/grievanceportal/pkg/metrics"
	"github.com/gurkanbulca/grievanceportal/pkg/sms"
)

const (
	testWifePassword    = "Aatreyee@3013"
	testHusbandPassword = "Ushnish@1330"
	testSessionSecret   = "0123456789abcdef0123456789abcdef"
)

// TestHelpers provides common test utilities
type TestHelpers struct {
	t       *testing.T
	db      *sqlx.DB
	repo    *repository.GrievanceRepository
	sms     *sms.MockSender
	email   *email.MockEmailService
	metrics *metrics.Collector
	logs    *observer.ObservedLogs
	logger  *zap.Logger
}

// NewTestHelpers opens a migrated SQLite database in a temp dir.
func NewTestHelpers(t *testing.T) *TestHelpers {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	db, err := database.NewSQLiteDB(context.Background(), database.Config{
		Path:        filepath.Join(t.TempDir(), "grievances.db"),
		BusyTimeout: time.Second,
		AutoMigrate: true,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return &TestHelpers{
		t:       t,
		db:      db,
		repo:    repository.NewGrievanceRepository(db),
		sms:     sms.NewMockSender(),
		email:   email.NewMockEmailService(),
		metrics: metrics.NewCollector(),
		logs:    logs,
		logger:  logger,
	}
}

// Notifier wires the mock dispatchers.
func (h *TestHelpers) Notifier() *Notifier {
	return NewNotifier(h.sms, h.email, time.Second, "Hubby", h.metrics, h.logger)
}

// GrievanceService returns a service backed by the temp database.
func (h *TestHelpers) GrievanceService() *GrievanceService {
	return NewGrievanceService(h.repo, h.Notifier(), h.metrics, h.logger)
}

// AuthService returns a service with the two standard test accounts.
func (h *TestHelpers) AuthService() *AuthService {
	pm := auth.NewPasswordManager().WithCost(bcrypt.MinCost)
	husbandHash, err := pm.HashPassword(testHusbandPassword)
	require.NoError(h.t, err)

	svc, err := NewAuthService(
		[]AccountSpec{
			{Username: "Wifey", Role: models.RoleWife, Password: testWifePassword},
			{Username: "Hubby", Role: models.RoleHusband, PasswordHash: husbandHash},
		},
		pm,
		auth.NewSessionManager(testSessionSecret, time.Hour),
		NewSecurityLogger(NewSecurityService(h.logger)),
		h.metrics,
		h.logger,
	)
	require.NoError(h.t, err)
	return svc
}

// CreateGrievance stores a grievance directly through the repository.
func (h *TestHelpers) CreateGrievance(priority models.Priority, description string) int64 {
	id, err := h.repo.Create(context.Background(), &repository.GrievanceInput{
		GrievanceType: "Communication",
		Priority:      priority,
		Description:   description,
		SubmittedBy:   "Wifey",
	})
	require.NoError(h.t, err)
	return id
}

// LogMessages returns every log message recorded so far.
func (h *TestHelpers) LogMessages() []string {
	entries := h.logs.All()
	msgs := make([]string, len(entries))
	for i, e := range entries {
		msgs[i] = e.Message
	}
	return msgs
}
