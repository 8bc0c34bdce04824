package core

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/signalsfoundry/groundwave/internal/special"
)

const (
	DefaultMaxModes        = 200
	DefaultSeriesTolerance = 5e-4

	maxExpArg = 709.0
	minExpArg = -745.0
)

// SeriesOptions bounds the residue series evaluation.
type SeriesOptions struct {
	MaxModes          int
	MaxRootIterations int
	Tolerance         float64
}

func (o SeriesOptions) withDefaults() SeriesOptions {
	if o.MaxModes <= 0 {
		o.MaxModes = DefaultMaxModes
	}
	if o.MaxRootIterations <= 0 {
		o.MaxRootIterations = special.DefaultMaxIterations
	}
	if o.Tolerance <= 0 {
		o.Tolerance = DefaultSeriesTolerance
	}
	return o
}

// SeriesResult is the normalised field of the residue series and the number
// of modes summed to reach it.
type SeriesResult struct {
	E     float64
	Modes int
}

// ResidueSeries sums the spherical-earth mode series
//
//	GW = sum_i H(h1) H(h2) exp(-j x t_i) / (t_i - q^2),  x = nu*theta
//
// where t_i are the roots of w1'(t) - q w1(t) = 0 and H the height-gain
// ratios w1(t_i - y)/w1(t_i). Summation stops once a term is below
// opts.Tolerance relative to the running sum.
func ResidueSeries(k, h1Km, h2Km, nu, thetaRad float64, q complex128, opts SeriesOptions) (SeriesResult, error) {
	opts = opts.withDefaults()
	finder := special.RootFinder{
		Kind:          special.WOne,
		Scaling:       special.Wait,
		MaxIterations: opts.MaxRootIterations,
	}

	yHigh := complex(k*h2Km/nu, 0)
	yLow := complex(k*h1Km/nu, 0)
	x := nu * thetaRad
	q2 := q * q

	var gw complex128
	for i := 1; i <= opts.MaxModes; i++ {
		root, err := finder.Find(i, q)
		if err != nil {
			if errors.Is(err, special.ErrRootNotConverged) {
				return SeriesResult{}, fmt.Errorf("%w: mode %d: %w", ErrNoSolutionConverged, i, err)
			}
			return SeriesResult{}, fmt.Errorf("%w: mode %d: %w", ErrNumericalInstability, i, err)
		}
		t := root.T

		w, err := heightGain(t, yLow, yHigh, h1Km > 0, h2Km > 0)
		if err != nil {
			return SeriesResult{}, fmt.Errorf("%w: mode %d height gain: %w", ErrNumericalInstability, i, err)
		}
		w /= t - q2

		// exp(-j x t); the real part x*Im(t) is negative for decaying modes.
		arg := complex(0, -x) * t
		var g complex128
		switch {
		case real(arg) > maxExpArg:
			return SeriesResult{}, fmt.Errorf("%w: mode %d attenuation exponent %g", ErrNumericalInstability, i, real(arg))
		case real(arg) >= minExpArg:
			g = w * cmplx.Exp(arg)
		}
		if cmplx.IsNaN(g) || cmplx.IsInf(g) {
			return SeriesResult{}, fmt.Errorf("%w: mode %d term is %v", ErrNumericalInstability, i, g)
		}
		gw += g

		if i == 1 {
			continue
		}
		if gw == 0 {
			return SeriesResult{}, fmt.Errorf("%w: mode sum vanished after %d modes", ErrNumericalInstability, i)
		}
		r := g / gw
		if math.Abs(real(r))+math.Abs(imag(r)) < opts.Tolerance {
			return finishSeries(x, gw, i)
		}
	}
	return SeriesResult{}, fmt.Errorf("%w: %d modes summed without reaching tolerance %g", ErrNoSolutionConverged, opts.MaxModes, opts.Tolerance)
}

func heightGain(t, yLow, yHigh complex128, lowAbove, highAbove bool) (complex128, error) {
	if !lowAbove && !highAbove {
		return 1, nil
	}
	wt, err := special.Airy(t, special.WOne, special.Wait)
	if err != nil {
		return 0, err
	}
	g := complex(1, 0)
	if lowAbove {
		wl, err := special.Airy(t-yLow, special.WOne, special.Wait)
		if err != nil {
			return 0, err
		}
		g *= wl / wt
	}
	if highAbove {
		wh, err := special.Airy(t-yHigh, special.WOne, special.Wait)
		if err != nil {
			return 0, err
		}
		g *= wh / wt
	}
	return g, nil
}

func finishSeries(x float64, gw complex128, modes int) (SeriesResult, error) {
	s := math.Sqrt(math.Pi / 2)
	e := cmplx.Abs(complex(math.Sqrt(x), 0) * complex(s, -s) * gw)
	if e == 0 || math.IsNaN(e) || math.IsInf(e, 0) {
		return SeriesResult{}, fmt.Errorf("%w: residue series field is %v", ErrNumericalInstability, e)
	}
	return SeriesResult{E: e, Modes: modes}, nil
}
