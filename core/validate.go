package core

import (
	"math"

	"github.com/signalsfoundry/groundwave/model"
)

// Supported input ranges.
const (
	MinHeightM      = 0.0
	MaxHeightM      = 50.0
	MinFrequencyMHz = 0.01
	MaxFrequencyMHz = 30.0
	MinDistanceKm   = 0.001
	MaxDistanceKm   = 10000.0
	MinEpsilon      = 1.0
	MinRefractivity = 250.0
	MaxRefractivity = 400.0
)

type check struct {
	field string
	value float64
	code  ReturnCode
	ok    func(float64) bool
}

func between(lo, hi float64) func(float64) bool {
	return func(v float64) bool { return v >= lo && v <= hi }
}

func atLeast(lo float64) func(float64) bool {
	return func(v float64) bool { return v >= lo && !math.IsInf(v, 1) }
}

func positive(v float64) bool { return v > 0 && !math.IsInf(v, 1) }

// Validate checks in against the supported ranges and returns an
// *InputError naming the first field out of range. Fields are checked in
// the order heights, frequency, power, distance, permittivity, conductivity,
// refractivity, polarization. NaN never satisfies a range. A ground with
// epsilon = 1 and sigma = 0 is rejected last, on sigma, with
// ErrorValidationLosslessGround.
func Validate(in model.Input) error {
	checks := []check{
		{"h_tx__meter", in.TxHeightM, ErrorValidationTxTerminalHeight, between(MinHeightM, MaxHeightM)},
		{"h_rx__meter", in.RxHeightM, ErrorValidationRxTerminalHeight, between(MinHeightM, MaxHeightM)},
		{"f__mhz", in.FrequencyMHz, ErrorValidationFrequency, between(MinFrequencyMHz, MaxFrequencyMHz)},
		{"p_tx__watt", in.TxPowerW, ErrorValidationTxPower, positive},
		{"d__km", in.DistanceKm, ErrorValidationPathDistance, between(MinDistanceKm, MaxDistanceKm)},
		{"epsilon", in.Epsilon, ErrorValidationEpsilon, atLeast(MinEpsilon)},
		{"sigma", in.SigmaSPerM, ErrorValidationSigma, atLeast(0)},
		{"n_s", in.SurfaceRefractivity, ErrorValidationSurfaceRefractivity, between(MinRefractivity, MaxRefractivity)},
	}
	for _, c := range checks {
		if !c.ok(c.value) {
			return &InputError{Field: c.field, Value: c.value, Code: c.code}
		}
	}
	if !in.Polarization.Valid() {
		return &InputError{Field: "pol", Value: float64(in.Polarization), Code: ErrorValidationPolarization}
	}
	if in.Epsilon == MinEpsilon && in.SigmaSPerM == 0 {
		return &InputError{Field: "sigma", Value: in.SigmaSPerM, Code: ErrorValidationLosslessGround}
	}
	return nil
}
