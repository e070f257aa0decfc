package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns the application's Prometheus registry.
type Collector struct {
	registry *prometheus.Registry

	submissions     prometheus.Counter
	updates         *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	chatbot         *prometheus.CounterVec
	logins          *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewCollector registers every grievance metric on a fresh registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		submissions: factory.NewCounter(prometheus.CounterOpts{
			Name: "grievance_submissions_total",
			Help: "Grievances stored successfully",
		}),
		updates: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "grievance_updates_total",
			Help: "Grievance status updates by new status",
		}, []string{"status"}),
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "grievance_notifications_total",
			Help: "Notification attempts by channel and result",
		}, []string{"channel", "result"}),
		chatbot: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "grievance_chatbot_requests_total",
			Help: "Chatbot requests by result",
		}, []string{"result"}),
		logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "grievance_logins_total",
			Help: "Login attempts by result",
		}, []string{"result"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "grievance_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (c *Collector) RecordSubmission() {
	c.submissions.Inc()
}

func (c *Collector) RecordUpdate(status string) {
	c.updates.WithLabelValues(status).Inc()
}

// RecordNotification counts one dispatch attempt; result is "sent",
// "failed" or "disabled".
func (c *Collector) RecordNotification(channel, result string) {
	c.notifications.WithLabelValues(channel, result).Inc()
}

func (c *Collector) RecordChatbot(result string) {
	c.chatbot.WithLabelValues(result).Inc()
}

func (c *Collector) RecordLogin(result string) {
	c.logins.WithLabelValues(result).Inc()
}

func (c *Collector) ObserveRequest(method, route, status string, d time.Duration) {
	c.requestDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}

// Registry exposes the underlying registry, mostly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
