package core

import (
	"math"

	"github.com/signalsfoundry/groundwave/model"
)

// PathGeometry holds the normalised quantities shared by both solutions.
type PathGeometry struct {
	H1Km              float64 // lower antenna
	H2Km              float64 // higher antenna
	EffectiveRadiusKm float64
	ThetaRad          float64 // angular path length
	K                 float64 // wavenumber, rad/km
	Nu                float64 // (a_e k / 2)^(1/3)
	Q                 complex128
}

// NewPathGeometry computes the path geometry for in over ground g.
func NewPathGeometry(in model.Input, g GroundConstants) PathGeometry {
	lambdaM := SpeedOfLight / (in.FrequencyMHz * 1e6)
	ae := EffectiveRadiusKm(in.SurfaceRefractivity)
	k := 2 * math.Pi * 1000 / lambdaM
	nu := math.Cbrt(ae * k / 2)
	return PathGeometry{
		H1Km:              math.Min(in.TxHeightM, in.RxHeightM) / 1000,
		H2Km:              math.Max(in.TxHeightM, in.RxHeightM) / 1000,
		EffectiveRadiusKm: ae,
		ThetaRad:          in.DistanceKm / ae,
		K:                 k,
		Nu:                nu,
		Q:                 complex(0, -nu) * g.Delta,
	}
}

// NumericalDistance is the path length in units of the natural distance
// scale of the sphere, nu*theta.
func (p PathGeometry) NumericalDistance() float64 {
	return p.Nu * p.ThetaRad
}

// EffectiveRadiusKm returns the effective Earth radius for surface
// refractivity ns (N-units).
func EffectiveRadiusKm(ns float64) float64 {
	return EarthRadiusKm / (1 - 0.04665*math.Exp(0.005577*ns))
}

// CrossoverDistanceKm is the path length at which the residue series takes
// over from the flat-earth solution, 80/f^(1/3) km with f in MHz.
func CrossoverDistanceKm(frequencyMHz float64) float64 {
	return 80 / math.Cbrt(frequencyMHz)
}

// SelectMethod picks the solution for a path of distanceKm at frequencyMHz.
func SelectMethod(distanceKm, frequencyMHz float64) model.SolutionMethod {
	if distanceKm < CrossoverDistanceKm(frequencyMHz) {
		return model.FlatEarthCurveCorrection
	}
	return model.ResidueSeries
}
