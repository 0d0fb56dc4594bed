// Package metrics exposes analyzer activity as prometheus collectors.
//
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "zeroii"

// Metrics holds the analyzer collectors.
type Metrics struct {
	registry *prometheus.Registry

	measurements  *prometheus.CounterVec
	sweepDuration *prometheus.HistogramVec
	sweepPoints   prometheus.Gauge
	minSWR        prometheus.Gauge
	codecFailures *prometheus.CounterVec
	storageOps    *prometheus.CounterVec
}

// New creates the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		measurements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "measurements_total",
				Help:      "Front-end measurements by outcome",
			},
			[]string{"result"},
		),
		sweepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "sweep_duration_seconds",
				Help:      "Duration of completed sweeps",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
			},
			[]string{"kind"},
		),
		sweepPoints: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sweep_points",
			Help:      "Points captured by the last completed sweep",
		}),
		minSWR: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "min_swr",
			Help:      "Lowest SWR of the last completed sweep",
		}),
		codecFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "decode_failures_total",
				Help:      "Rejected settings or results documents",
			},
			[]string{"document"},
		),
		storageOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "storage_operations_total",
				Help:      "Persistence operations by kind and outcome",
			},
			[]string{"op", "result"},
		),
	}

	m.registry.MustRegister(
		m.measurements,
		m.sweepDuration,
		m.sweepPoints,
		m.minSWR,
		m.codecFailures,
		m.storageOps,
	)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the collectors in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Measurement counts one front-end measurement.
func (m *Metrics) Measurement(err error) {
	if m == nil {
		return
	}
	m.measurements.WithLabelValues(result(err)).Inc()
}

// SweepDone records a completed sweep of the given kind ("calibration" or "analysis").
func (m *Metrics) SweepDone(kind string, points int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.sweepDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
	m.sweepPoints.Set(float64(points))
}

// MinSWR records the lowest SWR of the last sweep.
func (m *Metrics) MinSWR(swr float32) {
	if m == nil {
		return
	}
	m.minSWR.Set(float64(swr))
}

// DecodeFailed counts a rejected document ("settings" or "results").
func (m *Metrics) DecodeFailed(document string) {
	if m == nil {
		return
	}
	m.codecFailures.WithLabelValues(document).Inc()
}

// StorageOp counts a persistence operation ("save" or "load").
func (m *Metrics) StorageOp(op string, err error) {
	if m == nil {
		return
	}
	m.storageOps.WithLabelValues(op, result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
