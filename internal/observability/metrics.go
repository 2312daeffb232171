package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "sutra"

// MetricsConfig configures the metrics collector
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// MetricsCollector exposes Prometheus collectors for task processing. A zero
// value is valid and records nothing.
type MetricsCollector struct {
	registry *prometheus.Registry

	tasksProcessed  *prometheus.CounterVec
	taskDuration    *prometheus.HistogramVec
	actionRuns      *prometheus.CounterVec
	actionDuration  *prometheus.HistogramVec
	actionsInFlight prometheus.Gauge
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// NewMetricsCollector registers collectors on reg. A nil registry gets a
// fresh one with Go runtime and process collectors attached.
func NewMetricsCollector(config MetricsConfig, reg *prometheus.Registry) *MetricsCollector {
	if !config.Enabled {
		return &MetricsCollector{}
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m := &MetricsCollector{
		registry: reg,
		tasksProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "coordinator",
				Name:      "tasks_processed_total",
				Help:      "Tasks processed, by risk level and report status.",
			},
			[]string{"risk_level", "status"},
		),
		taskDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "coordinator",
				Name:      "task_duration_seconds",
				Help:      "Wall-clock time spent processing a task.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"risk_level"},
		),
		actionRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "executor",
				Name:      "action_runs_total",
				Help:      "Action runs, by status and failure reason.",
			},
			[]string{"status", "reason"},
		),
		actionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "executor",
				Name:      "action_duration_seconds",
				Help:      "Time spent running a single action.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"status"},
		),
		actionsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: "executor",
				Name:      "actions_in_flight",
				Help:      "Actions currently running.",
			},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests served, by method, route and status code.",
			},
			[]string{"method", "route", "code"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	reg.MustRegister(
		m.tasksProcessed,
		m.taskDuration,
		m.actionRuns,
		m.actionDuration,
		m.actionsInFlight,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// Enabled reports whether the collector records anything.
func (m *MetricsCollector) Enabled() bool {
	return m != nil && m.registry != nil
}

// Handler serves the Prometheus exposition format for this collector.
func (m *MetricsCollector) Handler() http.Handler {
	if !m.Enabled() {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordTask records a processed task.
func (m *MetricsCollector) RecordTask(riskLevel, status string, duration time.Duration) {
	if !m.Enabled() {
		return
	}
	m.tasksProcessed.WithLabelValues(riskLevel, status).Inc()
	m.taskDuration.WithLabelValues(riskLevel).Observe(duration.Seconds())
}

// ActionStarted marks an action as running.
func (m *MetricsCollector) ActionStarted() {
	if !m.Enabled() {
		return
	}
	m.actionsInFlight.Inc()
}

// RecordAction records a finished action run.
func (m *MetricsCollector) RecordAction(status, reason string, duration time.Duration) {
	if !m.Enabled() {
		return
	}
	m.actionsInFlight.Dec()
	m.actionRuns.WithLabelValues(status, reason).Inc()
	m.actionDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordHTTPRequest records a served HTTP request.
func (m *MetricsCollector) RecordHTTPRequest(method, route string, code int, latency time.Duration) {
	if !m.Enabled() {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(latency.Seconds())
}
