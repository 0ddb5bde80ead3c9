package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code", "service"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "service"},
	)

	// Upstream call metrics
	upstreamCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_calls_total",
			Help: "Total number of upstream service calls",
		},
		[]string{"upstream", "operation", "status", "service"},
	)

	upstreamCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_call_duration_seconds",
			Help:    "Duration of upstream service calls in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		},
		[]string{"upstream", "operation", "service"},
	)

	// Request submission metrics
	submissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "request_submissions_total",
			Help: "Total number of data request submissions",
		},
		[]string{"outcome", "service"},
	)

	// Health polling metrics
	healthPollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "health_polls_total",
			Help: "Total number of system status polls",
		},
		[]string{"result", "service"},
	)

	healthChannelState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "health_channel_up",
			Help: "Whether a health channel is currently up (1) or down (0)",
		},
		[]string{"channel", "service"},
	)

	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "health_notifications_total",
			Help: "Total number of health transition notifications emitted",
		},
		[]string{"channel", "type", "service"},
	)
)

// MetricsCollector handles Prometheus metrics collection
type MetricsCollector struct {
	serviceName string
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector(serviceName string) *MetricsCollector {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		upstreamCallsTotal,
		upstreamCallDuration,
		submissionsTotal,
		healthPollsTotal,
		healthChannelState,
		notificationsTotal,
	)

	return &MetricsCollector{
		serviceName: serviceName,
	}
}

// RecordHTTPRequest records HTTP request metrics
func (m *MetricsCollector) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, endpoint, statusCode, m.serviceName).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, m.serviceName).Observe(duration.Seconds())
}

// RecordUpstreamCall records upstream service call metrics
func (m *MetricsCollector) RecordUpstreamCall(upstream, operation, status string, duration time.Duration) {
	upstreamCallsTotal.WithLabelValues(upstream, operation, status, m.serviceName).Inc()
	upstreamCallDuration.WithLabelValues(upstream, operation, m.serviceName).Observe(duration.Seconds())
}

// RecordSubmission records a data request submission outcome
func (m *MetricsCollector) RecordSubmission(outcome string) {
	submissionsTotal.WithLabelValues(outcome, m.serviceName).Inc()
}

// RecordHealthPoll records a system status poll result
func (m *MetricsCollector) RecordHealthPoll(result string) {
	healthPollsTotal.WithLabelValues(result, m.serviceName).Inc()
}

// RecordChannelState records the current state of a health channel
func (m *MetricsCollector) RecordChannelState(channel string, up bool) {
	value := 0.0
	if up {
		value = 1.0
	}
	healthChannelState.WithLabelValues(channel, m.serviceName).Set(value)
}

// RecordNotification records a health notification emission
func (m *MetricsCollector) RecordNotification(channel, notificationType string) {
	notificationsTotal.WithLabelValues(channel, notificationType, m.serviceName).Inc()
}

// Handler returns the Prometheus metrics HTTP handler
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.Handler()
}

// HTTPMiddleware creates middleware for HTTP request metrics
func (m *MetricsCollector) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		duration := time.Since(start)
		statusCode := strconv.Itoa(wrapper.statusCode)

		m.RecordHTTPRequest(r.Method, r.URL.Path, statusCode, duration)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
