package core

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/signalsfoundry/groundwave/model"
)

func TestSurfaceImpedanceLossless(t *testing.T) {
	h := SurfaceImpedance(1, 15, 0, model.PolarizationHorizontal)
	if h.Eta != complex(15, 0) {
		t.Fatalf("Eta = %v, want 15", h.Eta)
	}
	if math.Abs(real(h.Delta)-math.Sqrt(14)) > 1e-12 || imag(h.Delta) != 0 {
		t.Fatalf("horizontal Delta = %v, want sqrt(14)", h.Delta)
	}

	v := SurfaceImpedance(1, 15, 0, model.PolarizationVertical)
	if math.Abs(real(v.Delta)-math.Sqrt(14)/15) > 1e-12 {
		t.Fatalf("vertical Delta = %v, want sqrt(14)/15", v.Delta)
	}
}

func TestSurfaceImpedanceLossTerm(t *testing.T) {
	g := SurfaceImpedance(0.01, 15, 0.005, model.PolarizationHorizontal)
	wantIm := -0.005 / (Epsilon0 * 2 * math.Pi * 1e4)
	if real(g.Eta) != 15 || math.Abs(imag(g.Eta)-wantIm) > 1e-9*math.Abs(wantIm) {
		t.Fatalf("Eta = %v, want 15%+gi", g.Eta, wantIm)
	}
	if d := cmplx.Abs(g.Delta*g.Delta - (g.Eta - 1)); d > 1e-9*cmplx.Abs(g.Eta) {
		t.Fatalf("Delta^2 differs from eta-1 by %g", d)
	}
	// principal root: lossy ground lies in the fourth quadrant
	if real(g.Delta) <= 0 || imag(g.Delta) >= 0 {
		t.Fatalf("Delta = %v, want fourth quadrant", g.Delta)
	}
}

func TestSurfaceImpedanceVerticalMuchSmaller(t *testing.T) {
	for _, f := range []float64{0.1, 1, 10} {
		h := SurfaceImpedance(f, 15, 0.005, model.PolarizationHorizontal)
		v := SurfaceImpedance(f, 15, 0.005, model.PolarizationVertical)
		if cmplx.Abs(v.Delta) >= cmplx.Abs(h.Delta) {
			t.Fatalf("f=%g: |vertical Delta| %g not below |horizontal Delta| %g", f, cmplx.Abs(v.Delta), cmplx.Abs(h.Delta))
		}
	}
}
