package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes prometheus collectors for HTTP traffic and patient flow.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec

	admissions    prometheus.Counter
	transitions   *prometheus.CounterVec
	regenerations *prometheus.CounterVec
	published     *prometheus.CounterVec
}

// NewMetrics registers collectors on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "patient_flow_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"path", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "patient_flow_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "patient_flow_http_errors_total",
			Help: "Errors rendered by the API, by error code.",
		}, []string{"path", "method", "code"}),
		admissions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "patient_flow_admissions_total",
			Help: "Patients admitted.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "patient_flow_transitions_total",
			Help: "Status transitions by target status.",
		}, []string{"status"}),
		regenerations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "patient_flow_regenerations_total",
			Help: "Regeneration runs by kind (synthetic, predictions, snapshot).",
		}, []string{"kind"}),
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "patient_flow_events_published_total",
			Help: "Domain events forwarded to brokers, by broker and outcome.",
		}, []string{"broker", "outcome"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.requestDuration, m.errors,
		m.admissions, m.transitions, m.regenerations, m.published,
	)
	return m
}

// RecordRequest observes one served request.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(path, method, code).Inc()
}

// RecordAdmission counts one admitted patient.
func (m *Metrics) RecordAdmission() {
	if m == nil {
		return
	}
	m.admissions.Inc()
}

// RecordTransition counts one status change.
func (m *Metrics) RecordTransition(status string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(status).Inc()
}

// RecordRegeneration counts a bulk regeneration run.
func (m *Metrics) RecordRegeneration(kind string) {
	if m == nil {
		return
	}
	m.regenerations.WithLabelValues(kind).Inc()
}

// RecordPublish counts a broker publish attempt.
func (m *Metrics) RecordPublish(broker string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.published.WithLabelValues(broker, outcome).Inc()
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
