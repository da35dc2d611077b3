package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the enhancement service.
type Metrics struct {
	RequestTotal         *prometheus.CounterVec
	RequestDurationMs    *prometheus.HistogramVec
	UpstreamAttemptTotal *prometheus.CounterVec
	FallbackTotal        *prometheus.CounterVec
	FilterActionTotal    *prometheus.CounterVec
	RateLimitHitsTotal   prometheus.Counter
}

// NewMetrics creates all metrics and registers them with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reprompter_request_total",
			Help: "Total number of enhancement requests by outcome.",
		}, []string{"mode", "model", "status"}),

		RequestDurationMs: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "reprompter_request_duration_ms",
			Help:    "Enhancement duration in milliseconds, labelled by the path that produced the result.",
			Buckets: []float64{100, 250, 500, 1000, 2500, 5000, 10000, 20000, 45000, 90000},
		}, []string{"model", "path"}),

		UpstreamAttemptTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reprompter_upstream_attempt_total",
			Help: "Upstream calls by path (gateway or direct), provider and outcome.",
		}, []string{"path", "provider", "outcome"}),

		FallbackTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reprompter_fallback_total",
			Help: "Gateway failures recovered by a direct provider attempt.",
		}, []string{"provider"}),

		FilterActionTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reprompter_filter_action_total",
			Help: "Total filter actions taken.",
		}, []string{"filter", "action"}),

		RateLimitHitsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "reprompter_rate_limit_hits_total",
			Help: "Requests rejected by the per-client rate limiter.",
		}),
	}
}

// RequestLabels holds the label values for recording a request.
type RequestLabels struct {
	Mode       string
	Model      string
	Path       string
	Status     string
	DurationMs float64
}

// RecordRequest records metrics for a completed request. Duration is only
// observed when an upstream path produced the outcome.
func (m *Metrics) RecordRequest(labels RequestLabels) {
	if m == nil {
		return
	}
	m.RequestTotal.WithLabelValues(labels.Mode, labels.Model, labels.Status).Inc()
	if labels.Path != "" {
		m.RequestDurationMs.WithLabelValues(labels.Model, labels.Path).Observe(labels.DurationMs)
	}
}

// RecordAttempt records one upstream call.
func (m *Metrics) RecordAttempt(path, provider, outcome string) {
	if m == nil {
		return
	}
	m.UpstreamAttemptTotal.WithLabelValues(path, provider, outcome).Inc()
}

// RecordFallback records a gateway failure that was handed to a direct adapter.
func (m *Metrics) RecordFallback(provider string) {
	if m == nil {
		return
	}
	m.FallbackTotal.WithLabelValues(provider).Inc()
}

// RecordFilterAction records a filter action metric.
func (m *Metrics) RecordFilterAction(filter, action string) {
	if m == nil {
		return
	}
	m.FilterActionTotal.WithLabelValues(filter, action).Inc()
}

// RecordRateLimitHit counts a rejected request.
func (m *Metrics) RecordRateLimitHit() {
	if m == nil {
		return
	}
	m.RateLimitHitsTotal.Inc()
}
