package special

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
)

const (
	// DefaultMaxIterations bounds the Newton iteration of a single root.
	DefaultMaxIterations = 25
	// DefaultRootTolerance is the L1 relative step size at which a root is accepted.
	DefaultRootTolerance = 0.5e-6
)

var (
	// ErrInvalidModeIndex is returned for root indices below 1.
	ErrInvalidModeIndex = errors.New("root index must be positive")
	// ErrRootNotConverged is returned when Newton's method exhausts its budget.
	ErrRootNotConverged = errors.New("root search did not converge")
)

// Zeros of Ai'(x) and Ai(x) on the negative real axis (DLMF table 9.9.1).
var (
	aiPrimeZeros = [...]float64{
		-1.0187929716, -3.2481975822, -4.8200992112, -6.1633073556, -7.3721772550,
		-8.4884867340, -9.5354490524, -10.5276603970, -11.4750666335, -12.3847883718,
	}
	aiZeros = [...]float64{
		-2.3381074105, -4.0879494441, -5.5205698281, -6.7867080901, -7.9441335871,
		-9.0226508533, -10.0401743416, -11.0085243037, -11.9360255632, -12.8287867529,
	}
)

// Root is a converged root t of Wi'(t) - q Wi(t) = 0 together with the
// function values at the final Newton iterate.
type Root struct {
	T          complex128
	Wi         complex128
	DWi        complex128
	Iterations int
}

// RootFinder locates roots of the impedance boundary equation
//
//	Wi'(t) - q Wi(t) = 0
//
// for an Airy function of the third kind. The zero value is not usable; Kind
// must be WOne or WTwo and Scaling must be Hufford or Wait. MaxIterations and
// Tolerance default to DefaultMaxIterations and DefaultRootTolerance.
type RootFinder struct {
	Kind          Kind
	Scaling       Scaling
	MaxIterations int
	Tolerance     float64
}

// WiRoot returns the i-th root (i >= 1) using the default iteration budget.
func WiRoot(i int, q complex128, kind Kind, scaling Scaling) (Root, error) {
	return RootFinder{Kind: kind, Scaling: scaling}.Find(i, q)
}

// Find returns the i-th root for the impedance parameter q.
func (f RootFinder) Find(i int, q complex128) (Root, error) {
	if i <= 0 {
		return Root{}, fmt.Errorf("%w: %d", ErrInvalidModeIndex, i)
	}
	if f.Scaling != Hufford && f.Scaling != Wait {
		return Root{}, fmt.Errorf("%w: %v", ErrInvalidScaling, f.Scaling)
	}
	if f.Kind != WOne && f.Kind != WTwo {
		return Root{}, fmt.Errorf("%w: %v is not WOne or WTwo", ErrInvalidKind, f.Kind)
	}
	maxIter := f.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	tol := f.Tolerance
	if tol <= 0 {
		tol = DefaultRootTolerance
	}

	t := initialGuess(i, q, f.phase())
	dkind := derivativeOf(f.Kind)

	for iter := 1; iter <= maxIter; iter++ {
		wi, err := Airy(t, f.Kind, f.Scaling)
		if err != nil {
			return Root{}, err
		}
		dwi, err := Airy(t, dkind, f.Scaling)
		if err != nil {
			return Root{}, err
		}
		// E(t) = Wi'(t) - q Wi(t), E'(t) = t Wi(t) - q Wi'(t).
		step := (dwi - q*wi) / (t*wi - q*dwi)
		t -= step
		if cmplx.IsNaN(t) || cmplx.IsInf(t) {
			return Root{}, fmt.Errorf("%w: root %d diverged after %d iterations", ErrRootNotConverged, i, iter)
		}
		rel := step / t
		if math.Abs(real(rel))+math.Abs(imag(rel)) <= tol {
			return Root{T: t, Wi: wi, DWi: dwi, Iterations: iter}, nil
		}
	}
	return Root{}, fmt.Errorf("%w: root %d after %d iterations", ErrRootNotConverged, i, maxIter)
}

// phase rotates the real Ai/Ai' zeros onto the ray carrying the zeros of
// the selected third-kind function.
func (f RootFinder) phase() complex128 {
	if (f.Kind == WOne && f.Scaling == Hufford) || (f.Kind == WTwo && f.Scaling == Wait) {
		return omegaBar
	}
	return omega
}

// initialGuess picks the Ai' zero (small |q|, Neumann-like boundary) or the
// Ai zero (large |q|, Dirichlet-like boundary) and applies one correction in q.
func initialGuess(i int, q complex128, ph complex128) complex128 {
	n := float64(i - 1)
	qa := cmplx.Abs(q)
	if qa*qa*qa <= 4*n+3 {
		var tt float64
		if i <= len(aiPrimeZeros) {
			tt = aiPrimeZeros[i-1]
		} else {
			// DLMF 9.9.8 / 9.9.19, three terms.
			t := 3.0 / 8.0 * math.Pi * (4*n + 1)
			tt = -math.Pow(t, 2.0/3.0) * (1 - 7.0/48.0*math.Pow(t, -2) + 35.0/288.0*math.Pow(t, -4))
		}
		ti := complex(tt, 0) * ph
		return ti + q/ti
	}

	var tt float64
	if i <= len(aiZeros) {
		tt = aiZeros[i-1]
	} else {
		// DLMF 9.9.6 / 9.9.18, three terms.
		t := 3.0 / 8.0 * math.Pi * (4*n + 3)
		tt = -math.Pow(t, 2.0/3.0) * (1 + 5.0/48.0*math.Pow(t, -2) - 5.0/36.0*math.Pow(t, -4))
	}
	return complex(tt, 0)*ph + 1/q
}
