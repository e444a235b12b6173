// Package metrics exposes Prometheus counters for the HTTP surface, the
// authorization guard and the consultation lifecycle.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector implements access.DenialRecorder and consultation.Recorder.
type Collector struct {
	httpRequests     *prometheus.CounterVec
	httpLatency      *prometheus.HistogramVec
	permissionDenied *prometheus.CounterVec
	requested        prometheus.Counter
	transitions      *prometheus.CounterVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carehub_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "carehub_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		permissionDenied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carehub_permission_denied_total",
			Help: "Operations refused by the authorization guard.",
		}, []string{"capability"}),
		requested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "carehub_consultations_requested_total",
			Help: "Consultation requests accepted.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carehub_consultation_transitions_total",
			Help: "Consultation status transitions applied.",
		}, []string{"from", "to"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.permissionDenied,
		c.requested,
		c.transitions,
	)

	return c
}

func (c *Collector) RecordHTTPRequest(route, method string, status int, elapsed time.Duration) {
	c.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

func (c *Collector) RecordPermissionDenied(capability string) {
	c.permissionDenied.WithLabelValues(capability).Inc()
}

func (c *Collector) RecordConsultationRequested() {
	c.requested.Inc()
}

func (c *Collector) RecordConsultationTransition(from, to string) {
	c.transitions.WithLabelValues(from, to).Inc()
}

// Handler serves the gatherer in the Prometheus exposition format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
