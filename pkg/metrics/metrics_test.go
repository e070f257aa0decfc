package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollector_Counters(t *testing.T) {
	c := NewCollector()

	c.RecordSubmission()
	c.RecordSubmission()
	c.RecordNotification("sms", "sent")
	c.RecordNotification("email", "failed")
	c.RecordChatbot("fallback")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.submissions))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.notifications.WithLabelValues("sms", "sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.notifications.WithLabelValues("email", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.chatbot.WithLabelValues("fallback")))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector()
	c.RecordUpdate("Resolved")
	c.ObserveRequest("GET", "/portal", "200", 15*time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `grievance_updates_total{status="Resolved"} 1`))
	assert.True(t, strings.Contains(body, "grievance_http_request_duration_seconds_bucket"))
}
