package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the collectors exposed on /metrics. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	PresencePublishes *prometheus.CounterVec
	SnapshotDrivers   prometheus.Gauge
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	FeedbackRecorded  *prometheus.CounterVec
	PollerFetches     *prometheus.CounterVec
}

// New creates the collectors on a fresh registry, together with the Go
// runtime and process collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		PresencePublishes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "byahe_presence_publishes_total",
				Help: "Accepted driver status publishes by status and vehicle type",
			},
			[]string{"status", "vehicle_type"},
		),

		SnapshotDrivers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "byahe_presence_snapshot_drivers",
				Help: "Number of drivers returned by the most recent snapshot",
			},
		),

		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "byahe_http_requests_total",
				Help: "HTTP requests by method, route and status code",
			},
			[]string{"method", "route", "status"},
		),

		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "byahe_http_request_duration_seconds",
				Help:    "HTTP request latency by method and route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		FeedbackRecorded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "byahe_feedback_recorded_total",
				Help: "Feedback entries recorded by rating",
			},
			[]string{"rating"},
		),

		PollerFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "byahe_poller_fetches_total",
				Help: "Client poller fetches by outcome",
			},
			[]string{"result"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.PresencePublishes,
		m.SnapshotDrivers,
		m.HTTPRequests,
		m.HTTPDuration,
		m.FeedbackRecorded,
		m.PollerFetches,
	)
	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus HTTP handler for this registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordDriverPublished counts an accepted publish
func (m *Metrics) RecordDriverPublished(status, vehicleType string) {
	if m == nil {
		return
	}
	m.PresencePublishes.WithLabelValues(status, vehicleType).Inc()
}

// RecordSnapshotSize sets the snapshot gauge
func (m *Metrics) RecordSnapshotSize(n int) {
	if m == nil {
		return
	}
	m.SnapshotDrivers.Set(float64(n))
}

// RecordFeedback counts a recorded rating
func (m *Metrics) RecordFeedback(rating int) {
	if m == nil {
		return
	}
	m.FeedbackRecorded.WithLabelValues(strconv.Itoa(rating)).Inc()
}

// RecordPollerFetch counts a poller fetch outcome
func (m *Metrics) RecordPollerFetch(result string) {
	if m == nil {
		return
	}
	m.PollerFetches.WithLabelValues(result).Inc()
}

// GinMiddleware records request counts and latency. Routes are labelled by
// their registered pattern so path parameters do not explode cardinality.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
