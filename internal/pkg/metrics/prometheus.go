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
			Namespace: "pulse",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pulse",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// Scheduler metrics
	schedulerRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pulse",
			Subsystem: "scheduler",
			Name:      "runs_total",
			Help:      "Total number of alert evaluation passes",
		},
	)

	schedulerRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pulse",
			Subsystem: "scheduler",
			Name:      "run_duration_seconds",
			Help:      "Duration of one alert evaluation pass in seconds",
			Buckets:   []float64{.1, .5, 1, 5, 10, 30, 60, 120},
		},
	)

	alertsTriggeredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pulse",
			Subsystem: "scheduler",
			Name:      "alerts_triggered_total",
			Help:      "Total number of triggered alerts",
		},
		[]string{"kind"},
	)

	alertsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pulse",
			Subsystem: "scheduler",
			Name:      "alerts_skipped_total",
			Help:      "Total number of alerts skipped by suppression",
		},
		[]string{"reason"},
	)

	// Email metrics
	emailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pulse",
			Subsystem: "mailer",
			Name:      "emails_total",
			Help:      "Total number of notification emails by delivery status",
		},
		[]string{"status"},
	)

	// Probe metrics
	probesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pulse",
			Subsystem: "probe",
			Name:      "runs_total",
			Help:      "Total number of LLM endpoint probes",
		},
		[]string{"provider", "outcome"},
	)

	probeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pulse",
			Subsystem: "probe",
			Name:      "latency_seconds",
			Help:      "Observed completion latency per probed model",
			Buckets:   []float64{.25, .5, 1, 2, 4, 8, 16, 32, 64},
		},
		[]string{"model"},
	)
)

// RecordSchedulerRun records one alert evaluation pass
func RecordSchedulerRun(duration time.Duration) {
	schedulerRunsTotal.Inc()
	schedulerRunDuration.Observe(duration.Seconds())
}

// RecordAlertTriggered records a triggered alert by kind
func RecordAlertTriggered(kind string) {
	alertsTriggeredTotal.WithLabelValues(kind).Inc()
}

// RecordAlertSkipped records a suppressed alert by reason
func RecordAlertSkipped(reason string) {
	alertsSkippedTotal.WithLabelValues(reason).Inc()
}

// RecordEmail records an email delivery attempt
func RecordEmail(status string) {
	emailsSentTotal.WithLabelValues(status).Inc()
}

// RecordProbe records an LLM probe outcome
func RecordProbe(provider, outcome string) {
	probesTotal.WithLabelValues(provider, outcome).Inc()
}

// RecordProbeLatency records the observed latency for one probed model
func RecordProbeLatency(model string, seconds float64) {
	probeLatency.WithLabelValues(model).Observe(seconds)
}

// Middleware instruments HTTP handlers
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		status := strconv.Itoa(ww.status)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
	})
}

// Handler returns the Prometheus scrape handler
func Handler() http.Handler {
	return promhttp.Handler()
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
