// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records request and auth counters for Prometheus scraping.
type Collector struct {
	httpStatus      *prometheus.CounterVec
	requestLatency  *prometheus.HistogramVec
	authEvents      *prometheus.CounterVec
	paymentsSettled prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smoothtransact_http_status_total",
			Help: "Responses by HTTP status code",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "smoothtransact_request_latency_seconds",
			Help:    "Request handling latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"path"}),
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smoothtransact_auth_events_total",
			Help: "Auth operations by kind and outcome",
		}, []string{"kind", "outcome"}),
		paymentsSettled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "smoothtransact_payments_settled_total",
			Help: "Invoices settled through the payment webhook",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestLatency,
		c.authEvents,
		c.paymentsSettled,
	)

	return c
}

// RecordHTTPStatus counts one response with the given status code.
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency records how long a request took on the given route.
func (c *Collector) RecordRequestLatency(path string, duration time.Duration) {
	c.requestLatency.WithLabelValues(path).Observe(duration.Seconds())
}

// RecordAuthEvent counts one auth operation, e.g. ("signin", "ok").
func (c *Collector) RecordAuthEvent(kind string, outcome string) {
	c.authEvents.WithLabelValues(kind, outcome).Inc()
}

// RecordPaymentSettled counts one invoice settled by the webhook.
func (c *Collector) RecordPaymentSettled() {
	c.paymentsSettled.Inc()
}

// Handler returns the HTTP handler for Prometheus scraping.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
