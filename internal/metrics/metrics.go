// Package metrics exposes Prometheus collectors for the login page.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shindakun/loginpage/internal/models"
)

const namespace = "loginpage"

// Metrics records login form activity. It satisfies login.Recorder.
type Metrics struct {
	registry *prometheus.Registry

	submissions *prometheus.CounterVec
	inFlight    prometheus.Gauge
	duration    prometheus.Histogram
	signups     prometheus.Counter
	pageSuccess prometheus.Counter
}

// New creates the collectors and registers them, plus the Go and process collectors,
// on a private registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Login form submit attempts by outcome.",
		}, []string{"outcome"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "submissions_in_flight",
			Help:      "Login submissions currently in the submitting state.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "submission_duration_seconds",
			Help:      "Time from entering to leaving the submitting state.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 1.5, 2, 5},
		}),
		signups: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signup_clicks_total",
			Help:      "Activations of the sign up control.",
		}),
		pageSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_success_callbacks_total",
			Help:      "Completion callbacks received by the login page.",
		}),
	}

	m.registry.MustRegister(
		m.submissions,
		m.inFlight,
		m.duration,
		m.signups,
		m.pageSuccess,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the registry the collectors live on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// SubmissionStarted marks a form entering the submitting state
func (m *Metrics) SubmissionStarted() {
	m.inFlight.Inc()
}

// SubmissionFinished marks a form returning to idle
func (m *Metrics) SubmissionFinished(outcome models.SubmissionOutcome, elapsed time.Duration) {
	m.inFlight.Dec()
	m.duration.Observe(elapsed.Seconds())
	m.submissions.WithLabelValues(string(outcome)).Inc()
}

// SubmissionRefused counts a submit attempt that never left idle
func (m *Metrics) SubmissionRefused(outcome models.SubmissionOutcome) {
	m.submissions.WithLabelValues(string(outcome)).Inc()
}

// SignUpClicked counts activations of the inert sign up control
func (m *Metrics) SignUpClicked() {
	m.signups.Inc()
}

// LoginSucceeded counts completion callbacks seen by the page
func (m *Metrics) LoginSucceeded() {
	m.pageSuccess.Inc()
}
