package core

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/signalsfoundry/groundwave/internal/special"
)

// FlatEarthCurveCorrection returns the normalised ground-wave field for a
// short path: Norton's flat-earth attenuation function F(p) with Wait's
// curvature correction in powers of 1/q^3, multiplied by two-term height
// gain factors for both antennas.
func FlatEarthCurveCorrection(delta, q complex128, h1Km, h2Km, distanceKm, k float64) (float64, error) {
	qi := complex(-0.5, 0.5) * complex(math.Sqrt(k*distanceKm), 0) * delta
	p := qi * qi

	w, err := special.Faddeeva(qi)
	if err != nil {
		return 0, fmt.Errorf("%w: attenuation function: %w", ErrNumericalInstability, err)
	}
	fp := 1 + complex(0, math.Sqrt(math.Pi))*qi*w

	q3 := q * q * q
	q6 := q3 * q3
	sqrtPiP := cmplx.Sqrt(complex(math.Pi, 0) * p)
	fx := fp +
		(1-1i*sqrtPiP-(1+2*p)*fp)/(4*q3) +
		(1-1i*sqrtPiP*(1-p)-2*p+5*p*p/6+(p*p/2-1)*fp)/(4*q6)

	gain := (1 + 1i*complex(k*h2Km, 0)*delta) * (1 + 1i*complex(k*h1Km, 0)*delta)
	e := cmplx.Abs(fx * gain)
	if math.IsNaN(e) || math.IsInf(e, 0) {
		return 0, fmt.Errorf("%w: flat-earth field is %v", ErrNumericalInstability, e)
	}
	return e, nil
}
