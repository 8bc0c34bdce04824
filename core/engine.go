package core

import (
	"fmt"

	"github.com/signalsfoundry/groundwave/internal/special"
	"github.com/signalsfoundry/groundwave/model"
)

// Options bounds the iterative parts of a prediction.
type Options struct {
	MaxModes          int
	MaxRootIterations int
	SeriesTolerance   float64
}

// DefaultOptions returns the published algorithm settings: 200 modes, 25
// Newton iterations per root and a 5e-4 relative series tolerance.
func DefaultOptions() Options {
	return Options{
		MaxModes:          DefaultMaxModes,
		MaxRootIterations: special.DefaultMaxIterations,
		SeriesTolerance:   DefaultSeriesTolerance,
	}
}

// Option customises an Engine.
type Option func(*Options)

// WithMaxModes caps the number of residue series modes.
func WithMaxModes(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxModes = n
		}
	}
}

// WithMaxRootIterations caps Newton iterations per mode root.
func WithMaxRootIterations(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxRootIterations = n
		}
	}
}

// WithSeriesTolerance sets the relative term size that ends the series.
func WithSeriesTolerance(tol float64) Option {
	return func(o *Options) {
		if tol > 0 {
			o.SeriesTolerance = tol
		}
	}
}

// WithOptions replaces all settings; non-positive fields keep their defaults.
func WithOptions(opts Options) Option {
	return func(o *Options) {
		WithMaxModes(opts.MaxModes)(o)
		WithMaxRootIterations(opts.MaxRootIterations)(o)
		WithSeriesTolerance(opts.SeriesTolerance)(o)
	}
}

// Engine evaluates ground-wave predictions. It holds only immutable settings
// and is safe for concurrent use.
type Engine struct {
	opts Options
}

// NewEngine returns an Engine using DefaultOptions adjusted by opts.
func NewEngine(opts ...Option) *Engine {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine{opts: o}
}

// Options returns the engine settings.
func (e *Engine) Options() Options { return e.opts }

// Prediction is a result plus the intermediate quantities that produced it.
type Prediction struct {
	model.Result

	Ground      GroundConstants
	Geometry    PathGeometry
	CrossoverKm float64
	// Modes is the number of residue series modes summed; zero for the
	// flat-earth solution.
	Modes int
}

// Predict validates in and returns the predicted loss, field strength and
// received power.
func (e *Engine) Predict(in model.Input) (model.Result, error) {
	p, err := e.Run(in)
	if err != nil {
		return model.Result{}, err
	}
	return p.Result, nil
}

// Run is Predict with diagnostics.
func (e *Engine) Run(in model.Input) (Prediction, error) {
	if err := Validate(in); err != nil {
		return Prediction{}, err
	}
	return e.solve(in, SelectMethod(in.DistanceKm, in.FrequencyMHz))
}

// Solve validates in and evaluates it with the given method regardless of
// path length. Used to compare both solutions around the crossover.
func (e *Engine) Solve(in model.Input, method model.SolutionMethod) (Prediction, error) {
	if err := Validate(in); err != nil {
		return Prediction{}, err
	}
	return e.solve(in, method)
}

func (e *Engine) solve(in model.Input, method model.SolutionMethod) (Prediction, error) {
	ground := SurfaceImpedance(in.FrequencyMHz, in.Epsilon, in.SigmaSPerM, in.Polarization)
	geo := NewPathGeometry(in, ground)
	p := Prediction{
		Ground:      ground,
		Geometry:    geo,
		CrossoverKm: CrossoverDistanceKm(in.FrequencyMHz),
	}

	var eNorm float64
	switch method {
	case model.FlatEarthCurveCorrection:
		v, err := FlatEarthCurveCorrection(ground.Delta, geo.Q, geo.H1Km, geo.H2Km, in.DistanceKm, geo.K)
		if err != nil {
			return Prediction{}, err
		}
		eNorm = v
	case model.ResidueSeries:
		sr, err := ResidueSeries(geo.K, geo.H1Km, geo.H2Km, geo.Nu, geo.ThetaRad, geo.Q, SeriesOptions{
			MaxModes:          e.opts.MaxModes,
			MaxRootIterations: e.opts.MaxRootIterations,
			Tolerance:         e.opts.SeriesTolerance,
		})
		if err != nil {
			return Prediction{}, err
		}
		eNorm, p.Modes = sr.E, sr.Modes
	default:
		return Prediction{}, fmt.Errorf("unknown solution method %v", method)
	}

	res, err := AssembleResult(eNorm, in, method)
	if err != nil {
		return Prediction{}, err
	}
	p.Result = res
	return p, nil
}

// Predict evaluates in with the default options.
func Predict(in model.Input) (model.Result, error) {
	return NewEngine().Predict(in)
}

// Evaluate is the status-code boundary: it never returns an error value,
// only a ReturnCode, and the result is the zero value unless the code is
// Success.
func Evaluate(in model.Input) (model.Result, ReturnCode) {
	res, err := Predict(in)
	if err != nil {
		return model.Result{}, CodeOf(err)
	}
	return res, Success
}
