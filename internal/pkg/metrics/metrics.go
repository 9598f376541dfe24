package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sentinel",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sentinel",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// Alert pipeline metrics
	alertsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sentinel",
			Subsystem: "alerts",
			Name:      "processed_total",
			Help:      "Total number of alert events processed",
		},
		[]string{"action", "severity"},
	)

	alertsFilteredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sentinel",
			Subsystem: "alerts",
			Name:      "filtered_total",
			Help:      "Total number of alerts suppressed by the smart filter",
		},
		[]string{"reason"},
	)

	processingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "sentinel",
			Subsystem: "alerts",
			Name:      "processing_duration_seconds",
			Help:      "End-to-end alert processing duration in seconds",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	activeAlerts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "sentinel",
			Subsystem: "alerts",
			Name:      "active_count",
			Help:      "Number of currently active alerts",
		},
	)

	// Correlation metrics
	correlationsFoundTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sentinel",
			Subsystem: "correlation",
			Name:      "found_total",
			Help:      "Total number of correlations found",
		},
		[]string{"type"},
	)

	// Notification metrics
	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sentinel",
			Subsystem: "notifications",
			Name:      "total",
			Help:      "Total number of notification attempts by channel and outcome",
		},
		[]string{"channel", "status"},
	)

	notificationSendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sentinel",
			Subsystem: "notifications",
			Name:      "send_duration_seconds",
			Help:      "Channel send duration in seconds",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"channel"},
	)

	dispatchQueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "sentinel",
			Subsystem: "notifications",
			Name:      "queue_depth",
			Help:      "Number of queued delivery items per priority lane",
		},
		[]string{"priority"},
	)
)

// RecordAlertProcessed records a processed alert event
func RecordAlertProcessed(action, severity string) {
	alertsProcessedTotal.WithLabelValues(action, severity).Inc()
}

// RecordAlertFiltered records an alert suppressed by the smart filter
func RecordAlertFiltered(reason string) {
	alertsFilteredTotal.WithLabelValues(reason).Inc()
}

// RecordProcessingDuration records end-to-end processing time
func RecordProcessingDuration(d time.Duration) {
	processingDuration.Observe(d.Seconds())
}

// SetActiveAlerts sets the current active alert gauge
func SetActiveAlerts(n int) {
	activeAlerts.Set(float64(n))
}

// RecordCorrelationFound records a surviving correlation
func RecordCorrelationFound(corrType string) {
	correlationsFoundTotal.WithLabelValues(corrType).Inc()
}

// RecordNotification records a notification state transition
func RecordNotification(channel, status string) {
	notificationsTotal.WithLabelValues(channel, status).Inc()
}

// RecordSendDuration records the duration of a channel send
func RecordSendDuration(channel string, d time.Duration) {
	notificationSendDuration.WithLabelValues(channel).Observe(d.Seconds())
}

// SetQueueDepth sets the dispatch queue depth for a priority lane
func SetQueueDepth(priority string, depth int) {
	dispatchQueueDepth.WithLabelValues(priority).Set(float64(depth))
}

// Handler returns the prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware instruments HTTP requests with request count and duration
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(ww, r)

		routePattern := chi.RouteContext(r.Context()).RoutePattern()
		if routePattern == "" {
			routePattern = r.URL.Path
		}

		status := strconv.Itoa(ww.status)
		httpRequestsTotal.WithLabelValues(r.Method, routePattern, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, routePattern, status).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
