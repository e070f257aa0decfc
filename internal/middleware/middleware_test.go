package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gurkanbulca/grievanceportal/internal/models"
	"github.com/gurkanbulca/grievanceportal/pkg/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// tokenTable maps tokens straight to accounts.
type tokenTable map[string]*models.Account

func (t tokenTable) ValidateSession(token string) (*models.Account, error) {
	if a, ok := t[token]; ok {
		return a, nil
	}
	return nil, errors.New("invalid session")
}

type recordingReporter struct{ paths []string }

func (r *recordingReporter) LogUnauthorizedAccess(_ context.Context, path, _ string) error {
	r.paths = append(r.paths, path)
	return nil
}

var sessions = tokenTable{
	"wife-token":    {Username: "Wifey", Role: models.RoleWife},
	"husband-token": {Username: "Hubby", Role: models.RoleHusband},
}

func newAuthRouter(reporter AccessReporter) *gin.Engine {
	am := NewAuthMiddleware(sessions, reporter)
	r := gin.New()
	r.Use(ContextExtractor(), am.LoadSession())

	whoami := func(c *gin.Context) {
		username, _ := GetUsernameFromContext(c.Request.Context())
		c.String(http.StatusOK, username)
	}
	r.GET("/portal", am.RequireRole(RedirectTo("/"), models.RoleWife), whoami)
	r.POST("/update", am.RequireRole(JSONUnauthorized(), models.RoleHusband), whoami)
	r.GET("/any", am.RequireRole(JSONUnauthorized()), whoami)
	return r
}

func request(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireRole(t *testing.T) {
	reporter := &recordingReporter{}
	r := newAuthRouter(reporter)

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		wantStatus int
		wantBody   string
	}{
		{"wife on wife page", http.MethodGet, "/portal", "wife-token", http.StatusOK, "Wifey"},
		{"husband on wife page", http.MethodGet, "/portal", "husband-token", http.StatusSeeOther, ""},
		{"anonymous on wife page", http.MethodGet, "/portal", "", http.StatusSeeOther, ""},
		{"forged cookie", http.MethodGet, "/portal", "forged", http.StatusSeeOther, ""},
		{"husband on husband json", http.MethodPost, "/update", "husband-token", http.StatusOK, "Hubby"},
		{"wife on husband json", http.MethodPost, "/update", "wife-token", http.StatusUnauthorized, `{"error":"Unauthorized"}`},
		{"anonymous on any", http.MethodGet, "/any", "", http.StatusUnauthorized, `{"error":"Unauthorized"}`},
		{"wife on any", http.MethodGet, "/any", "wife-token", http.StatusOK, "Wifey"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := request(r, tt.method, tt.path, tt.token)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusSeeOther {
				assert.Equal(t, "/", w.Header().Get("Location"))
			}
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
		})
	}

	assert.Equal(t, []string{"/portal", "/portal", "/portal", "/update", "/any"}, reporter.paths)
}

func TestContextExtractor_RequestID(t *testing.T) {
	r := gin.New()
	r.Use(ContextExtractor())
	r.GET("/", func(c *gin.Context) {
		info := GetClientInfoFromContext(c.Request.Context())
		c.String(http.StatusOK, info.RequestID+"|"+info.IPAddress+"|"+info.UserAgent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("User-Agent", "test-agent")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	id := w.Header().Get(HeaderRequestID)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id+"|192.0.2.1|test-agent", w.Body.String())

	existing := uuid.New().String()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, existing)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, existing, w.Header().Get(HeaderRequestID))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "<script>")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "<script>", w.Header().Get(HeaderRequestID))
}

func TestLoginLimiter(t *testing.T) {
	l := NewLoginLimiter(5, 5)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow("10.0.0.1"), "attempt %d", i+1)
	}
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"), "other addresses have their own bucket")

	now = now.Add(12 * time.Second)
	assert.True(t, l.Allow("10.0.0.1"), "one token refills every 12s")
	assert.False(t, l.Allow("10.0.0.1"))

	now = now.Add(time.Hour)
	l.Allow("10.0.0.3")
	l.mu.Lock()
	assert.Len(t, l.limiters, 1, "idle buckets are dropped")
	l.mu.Unlock()
}

func TestLoginLimiter_Middleware(t *testing.T) {
	l := NewLoginLimiter(1, 1)
	r := gin.New()
	r.POST("/login", l.Middleware(func(c *gin.Context) {
		c.String(http.StatusTooManyRequests, "slow down")
	}), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := request(r, http.MethodPost, "/login", "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = request(r, http.MethodPost, "/login", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRequestMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	rm := NewRequestMiddleware(zap.New(core), metrics.NewCollector())

	r := gin.New()
	r.Use(ContextExtractor(), rm.LogRequest(), rm.RecoverPanic())
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := request(r, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())

	w = request(r, http.MethodGet, "/ok", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())
	requests := logs.FilterMessage("HTTP Request").All()
	require.Len(t, requests, 2)
	assert.Equal(t, int64(500), requests[0].ContextMap()["status"])
	assert.Equal(t, "/ok", requests[1].ContextMap()["path"])
}

func TestRequestValidator(t *testing.T) {
	v := NewRequestValidator(&ValidationConfig{MaxBodyBytes: 48, MaxUsernameLength: 5, MaxPasswordLength: 8})
	r := gin.New()
	r.Use(v.LimitBody())
	r.POST("/json", v.RequireJSON(), func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})
	r.POST("/login", v.LoginFields(func(c *gin.Context) { c.Status(http.StatusBadRequest) }), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	send := func(path, contentType, body string) int {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("/json", "application/json; charset=utf-8", `{"a":1}`))
	assert.Equal(t, http.StatusBadRequest, send("/json", "text/plain", `{"a":1}`))
	assert.Equal(t, http.StatusRequestEntityTooLarge, send("/json", "application/json", `{"a":"0123456789abcdef0123456789abcdef0123456789"}`))

	form := url.Values{"username": {"Wifey"}, "password": {"secret"}}.Encode()
	assert.Equal(t, http.StatusOK, send("/login", "application/x-www-form-urlencoded", form))
	form = url.Values{"username": {"Wifey-the-great"}, "password": {"secret"}}.Encode()
	assert.Equal(t, http.StatusBadRequest, send("/login", "application/x-www-form-urlencoded", form))
	form = url.Values{"username": {"Wifey"}, "password": {"secret"}, "note": {strings.Repeat("x", 40)}}.Encode()
	assert.Equal(t, http.StatusBadRequest, send("/login", "application/x-www-form-urlencoded", form), "a body over the limit is denied, not read as empty fields")
}
