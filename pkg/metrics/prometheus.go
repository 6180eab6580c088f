package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	seriesPoints  *prometheus.CounterVec
	pipelineRuns  *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	regimeDays    *prometheus.GaugeVec
	currentRegime *prometheus.GaugeVec
	latency       *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		seriesPoints: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macropulse_series_points_total",
				Help: "Total number of observations ingested per series",
			},
			[]string{"series"},
		),
		pipelineRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macropulse_pipeline_runs_total",
				Help: "Total pipeline runs by outcome",
			},
			[]string{"outcome"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macropulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		regimeDays: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "macropulse_regime_days",
				Help: "Number of classified days per regime in the latest run",
			},
			[]string{"regime"},
		),
		currentRegime: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "macropulse_current_regime",
				Help: "One-hot indicator of the latest smoothed regime",
			},
			[]string{"regime"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "macropulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordSeriesPoints records the number of observations ingested for a series.
func (r *Recorder) RecordSeriesPoints(series string, n int) {
	r.seriesPoints.WithLabelValues(series).Add(float64(n))
}

// RecordPipelineRun records a pipeline run outcome ("ok" or "error").
func (r *Recorder) RecordPipelineRun(outcome string) {
	r.pipelineRuns.WithLabelValues(outcome).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordRegimeDays records the classified day count for a regime.
func (r *Recorder) RecordRegimeDays(regime string, days int) {
	r.regimeDays.WithLabelValues(regime).Set(float64(days))
}

// RecordCurrentRegime sets the one-hot gauge for the latest smoothed regime.
func (r *Recorder) RecordCurrentRegime(regime string) {
	for _, g := range regimeNames {
		v := 0.0
		if g == regime {
			v = 1.0
		}
		r.currentRegime.WithLabelValues(g).Set(v)
	}
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

var regimeNames = []string{
	"risk_off_crisis",
	"policy_pivot",
	"late_cycle",
	"risk_on_expansion",
	"transition",
}
