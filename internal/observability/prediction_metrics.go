package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PredictionCollector exposes engine-level Prometheus metrics: how many
// predictions ran with which solution and outcome, how long they took, and
// how many residue series modes they needed.
type PredictionCollector struct {
	gatherer prometheus.Gatherer

	Predictions *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
	Modes       prometheus.Histogram
	SweepPoints prometheus.Counter
}

// NewPredictionCollector registers prediction metrics against reg.
func NewPredictionCollector(reg prometheus.Registerer) (*PredictionCollector, error) {
	reg, gatherer := gathererFor(reg)

	predictions, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lfmf_predictions_total",
		Help: "Ground-wave predictions evaluated, labeled by solution method and return code.",
	}, []string{"method", "code"}), "lfmf_predictions_total")
	if err != nil {
		return nil, err
	}

	duration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lfmf_prediction_duration_seconds",
		Help:    "Time spent evaluating a single prediction.",
		Buckets: []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	}, []string{"method"}), "lfmf_prediction_duration_seconds")
	if err != nil {
		return nil, err
	}

	modes, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "lfmf_residue_series_modes",
		Help:    "Modes summed by converged residue series evaluations.",
		Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 34, 55, 89, 144, 200},
	}), "lfmf_residue_series_modes")
	if err != nil {
		return nil, err
	}

	sweep, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lfmf_sweep_points_total",
		Help: "Distances evaluated by batch sweeps.",
	}), "lfmf_sweep_points_total")
	if err != nil {
		return nil, err
	}

	return &PredictionCollector{
		gatherer:    gatherer,
		Predictions: predictions,
		Duration:    duration,
		Modes:       modes,
		SweepPoints: sweep,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *PredictionCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// ObservePrediction records one evaluation. method is empty when the input
// failed validation before a solution was selected; modes is zero for the
// flat-earth solution and for failures.
func (c *PredictionCollector) ObservePrediction(method, code string, modes int, d time.Duration) {
	if c == nil {
		return
	}
	if method == "" {
		method = "none"
	}
	if c.Predictions != nil {
		c.Predictions.WithLabelValues(method, code).Inc()
	}
	if c.Duration != nil {
		c.Duration.WithLabelValues(method).Observe(d.Seconds())
	}
	if modes > 0 && c.Modes != nil {
		c.Modes.Observe(float64(modes))
	}
}

// AddSweepPoints counts n evaluated sweep distances.
func (c *PredictionCollector) AddSweepPoints(n int) {
	if c == nil || c.SweepPoints == nil || n <= 0 {
		return
	}
	c.SweepPoints.Add(float64(n))
}
