// internal/service/auth_service_test.go
package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/gurkanbulca/grievanceportal/internal/middleware"
	"github.com/gurkanbulca/grievanceportal/internal/models"
	"github.com/gurkanbulca/grievanceportal/pkg/auth"
)

func TestAuthService_Login(t *testing.T) {
	h := NewTestHelpers(t)
	svc := h.AuthService()
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		wantRole models.Role
		wantErr  bool
	}{
		{"wife", "Wifey", testWifePassword, models.RoleWife, false},
		{"husband", "Hubby", testHusbandPassword, models.RoleHusband, false},
		{"wife with husband password", "Wifey", testHusbandPassword, "", true},
		{"husband with wife password", "Hubby", testWifePassword, "", true},
		{"unknown user", "Stranger", testWifePassword, "", true},
		{"username is case sensitive", "wifey", testWifePassword, "", true},
		{"empty", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Login(ctx, tt.username, tt.password)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCredentials)
				assert.Nil(t, res)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, res.Account.Role)
			assert.NotEmpty(t, res.Token)

			account, err := svc.ValidateSession(res.Token)
			require.NoError(t, err)
			assert.Equal(t, tt.username, account.Username)
			assert.Equal(t, tt.wantRole, account.Role)
		})
	}
}

func TestAuthService_FailuresAreIndistinguishable(t *testing.T) {
	h := NewTestHelpers(t)
	svc := h.AuthService()
	ctx := context.Background()

	_, badUser := svc.Authenticate(ctx, "Nobody", testWifePassword)
	_, badPass := svc.Authenticate(ctx, "Wifey", "wrong-password-1")
	require.Error(t, badUser)
	assert.Equal(t, badUser, badPass)
}

func TestAuthService_ValidateSession(t *testing.T) {
	h := NewTestHelpers(t)
	svc := h.AuthService()

	_, err := svc.ValidateSession("")
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = svc.ValidateSession("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidSession)

	// A correctly signed token for a role the account does not hold.
	forged, err := auth.NewSessionManager(testSessionSecret, time.Hour).Issue("Wifey", string(models.RoleHusband))
	require.NoError(t, err)
	_, err = svc.ValidateSession(forged)
	assert.ErrorIs(t, err, ErrInvalidSession)

	ghost, err := auth.NewSessionManager(testSessionSecret, time.Hour).Issue("Ghost", string(models.RoleWife))
	require.NoError(t, err)
	_, err = svc.ValidateSession(ghost)
	assert.ErrorIs(t, err, ErrInvalidSession)

	assert.Equal(t, 3600, svc.SessionMaxAge())
}

func TestNewAuthService_Errors(t *testing.T) {
	pm := auth.NewPasswordManager().WithCost(bcrypt.MinCost)
	sm := auth.NewSessionManager(testSessionSecret, time.Hour)
	sl := NewSecurityLogger(NewSecurityService(zap.NewNop()))

	tests := []struct {
		name  string
		specs []AccountSpec
	}{
		{"no password", []AccountSpec{{Username: "Wifey", Role: models.RoleWife}}},
		{"bad hash", []AccountSpec{{Username: "Wifey", Role: models.RoleWife, PasswordHash: "plaintext"}}},
		{"bad role", []AccountSpec{{Username: "Wifey", Role: "admin", Password: testWifePassword}}},
		{"weak password", []AccountSpec{{Username: "Wifey", Role: models.RoleWife, Password: "short"}}},
		{"duplicate", []AccountSpec{
			{Username: "Wifey", Role: models.RoleWife, Password: testWifePassword},
			{Username: "Wifey", Role: models.RoleHusband, Password: testHusbandPassword},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAuthService(tt.specs, pm, sm, sl, nil, zap.NewNop())
			assert.Error(t, err)
		})
	}
}

func TestAuthService_SecurityEvents(t *testing.T) {
	h := NewTestHelpers(t)
	svc := h.AuthService()
	ctx := middleware.WithSession(context.Background(), "Wifey", string(models.RoleWife))

	_, _ = svc.Login(ctx, "Wifey", "wrong-password-1")
	_, err := svc.Login(ctx, "Wifey", testWifePassword)
	require.NoError(t, err)
	svc.Logout(ctx, "Wifey")
	svc.ReportThrottled(ctx, "Wifey")

	var types []string
	for _, e := range h.logs.FilterField(zap.String("component", "security")).All() {
		types = append(types, e.ContextMap()["event_type"].(string))
	}
	assert.Equal(t, []string{"login_failed", "login_success", "logout", "suspicious_activity"}, types)
}
