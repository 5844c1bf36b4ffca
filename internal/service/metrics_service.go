package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService exposes Prometheus metrics on a private registry.
type MetricsService struct {
	registry *prometheus.Registry

	httpDuration *prometheus.HistogramVec
	httpRequests *prometheus.CounterVec

	cellWrites     prometheus.Counter
	importSessions *prometheus.CounterVec
	aiRequests     *prometheus.CounterVec
	droppedSlots   prometheus.Counter
}

// NewMetricsService builds and registers all collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency distribution.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests processed.",
	}, []string{"method", "path", "status"})

	cellWrites := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_cell_writes_total",
		Help: "Schedule cells written through manual edits and import finalize.",
	})

	importSessions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "import_sessions_total",
		Help: "Import sessions by terminal outcome.",
	}, []string{"outcome"})

	aiRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ai_requests_total",
		Help: "Generative model calls by result.",
	}, []string{"kind", "result"})

	droppedSlots := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "import_dropped_slots_total",
		Help: "Extracted slots discarded during normalization.",
	})

	registry.MustRegister(httpDuration, httpRequests, cellWrites, importSessions, aiRequests, droppedSlots)

	return &MetricsService{
		registry:       registry,
		httpDuration:   httpDuration,
		httpRequests:   httpRequests,
		cellWrites:     cellWrites,
		importSessions: importSessions,
		aiRequests:     aiRequests,
		droppedSlots:   droppedSlots,
	}
}

// Handler serves the metrics endpoint.
func (s *MetricsService) Handler() http.Handler {
	if s == nil || s.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// ObserveHTTPRequest records one served request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if s == nil {
		return
	}
	labels := prometheus.Labels{"method": method, "path": path, "status": strconv.Itoa(status)}
	s.httpDuration.With(labels).Observe(duration.Seconds())
	s.httpRequests.With(labels).Inc()
}

// CountCellWrites adds to the schedule write counter.
func (s *MetricsService) CountCellWrites(n int) {
	if s == nil || n <= 0 {
		return
	}
	s.cellWrites.Add(float64(n))
}

// CountImportSession records a terminal import outcome.
func (s *MetricsService) CountImportSession(outcome string) {
	if s == nil {
		return
	}
	s.importSessions.WithLabelValues(outcome).Inc()
}

// CountAIRequest records one generative model call.
func (s *MetricsService) CountAIRequest(kind, result string) {
	if s == nil {
		return
	}
	s.aiRequests.WithLabelValues(kind, result).Inc()
}

// CountDroppedSlots adds to the normalization discard counter.
func (s *MetricsService) CountDroppedSlots(n int) {
	if s == nil || n <= 0 {
		return
	}
	s.droppedSlots.Add(float64(n))
}
