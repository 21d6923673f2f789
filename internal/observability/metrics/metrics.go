// Package metrics exposes prometheus instruments for the HTTP layer and the
// POS domain. Registered on the default registry and served at /metrics.
package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPMetrics instruments inbound requests.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics() *HTTPMetrics {
	return &HTTPMetrics{
		requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tillpos_http_requests_total",
			Help: "Inbound HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tillpos_http_request_duration_seconds",
			Help:    "Inbound HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// GinMiddleware records request counts and latencies.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		method := c.Request.Method
		m.requests.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

// Metrics exposes domain-level instruments.
type Metrics struct {
	salesCommitted prometheus.Counter
	salesRefunded  prometheus.Counter
	salesRejected  *prometheus.CounterVec
	webhookEvents  *prometheus.CounterVec
	loginDenied    *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		salesCommitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tillpos_sales_committed_total",
			Help: "Sales committed successfully.",
		}),
		salesRefunded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tillpos_sales_refunded_total",
			Help: "Sales refunded successfully.",
		}),
		salesRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tillpos_sales_rejected_total",
			Help: "Sale attempts rejected before commit.",
		}, []string{"reason"}),
		webhookEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tillpos_webhook_events_total",
			Help: "Gateway webhook events by kind and outcome.",
		}, []string{"kind", "outcome"}),
		loginDenied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tillpos_login_denied_total",
			Help: "Login attempts denied.",
		}, []string{"reason"}),
	}
}

func (m *Metrics) RecordSaleCommitted() {
	if m == nil {
		return
	}
	m.salesCommitted.Inc()
}

func (m *Metrics) RecordSaleRefunded() {
	if m == nil {
		return
	}
	m.salesRefunded.Inc()
}

func (m *Metrics) RecordSaleRejected(reason string) {
	if m == nil {
		return
	}
	m.salesRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) RecordWebhookEvent(kind, outcome string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) RecordLoginDenied(reason string) {
	if m == nil {
		return
	}
	m.loginDenied.WithLabelValues(reason).Inc()
}
