package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	eventsTotal    *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	latency        *prometheus.HistogramVec
	predictedTick  prometheus.Gauge
	confidence     prometheus.Gauge
	coverage       prometheus.Gauge
	driftStatistic prometheus.Gauge
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		eventsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rugpull_events_total",
				Help: "Total number of feed events processed",
			},
			[]string{"type"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rugpull_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rugpull_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		predictedTick: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "rugpull_predicted_tick",
				Help: "Latest predicted termination tick",
			},
		),
		confidence: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "rugpull_prediction_confidence",
				Help: "Confidence of the latest prediction",
			},
		),
		coverage: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "rugpull_realized_coverage",
				Help: "Realized interval coverage over the recent window",
			},
		),
		driftStatistic: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "rugpull_drift_statistic",
				Help: "Current Page-Hinkley drift statistic",
			},
		),
	}
}

// RecordEvent records a processed feed event.
func (r *Recorder) RecordEvent(kind string) {
	r.eventsTotal.WithLabelValues(kind).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordPrediction records the latest point prediction and confidence.
func (r *Recorder) RecordPrediction(predictedTick, confidence float64) {
	r.predictedTick.Set(predictedTick)
	r.confidence.Set(confidence)
}

// RecordCoverage records the realized interval coverage.
func (r *Recorder) RecordCoverage(rate float64) {
	r.coverage.Set(rate)
}

// RecordDriftStatistic records the current drift test statistic.
func (r *Recorder) RecordDriftStatistic(stat float64) {
	r.driftStatistic.Set(stat)
}
