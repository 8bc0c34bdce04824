package core

import (
	"math"
	"math/cmplx"

	"github.com/signalsfoundry/groundwave/model"
)

// Physical constants of the model.
const (
	Epsilon0       = 8.854187817e-12 // vacuum permittivity, F/m
	EarthRadiusKm  = 6370.0          // actual Earth radius used for the effective radius
	SpeedOfLight   = 299792458.0     // m/s
	FreeSpaceImped = 119.9169832 * math.Pi
)

// GroundConstants are the electrical properties of the ground derived for
// one frequency and polarization.
type GroundConstants struct {
	// Eta is the complex relative permittivity eps - j*sigma/(eps0*omega).
	Eta complex128
	// Delta is the normalised surface impedance.
	Delta complex128
}

// SurfaceImpedance derives the complex permittivity and the normalised
// surface impedance of homogeneous ground:
//
//	delta = sqrt(eta - 1)        horizontal
//	delta = sqrt(eta - 1) / eta  vertical
func SurfaceImpedance(frequencyMHz, epsilon, sigma float64, pol model.Polarization) GroundConstants {
	fHz := frequencyMHz * 1e6
	eta := complex(epsilon, -sigma/(Epsilon0*2*math.Pi*fHz))
	delta := cmplx.Sqrt(eta - 1)
	if pol == model.PolarizationVertical {
		delta /= eta
	}
	return GroundConstants{Eta: eta, Delta: delta}
}
