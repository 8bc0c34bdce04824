package special

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"
)

func TestFaddeevaKnownValues(t *testing.T) {
	tests := []struct {
		name string
		z    complex128
		want complex128
		tol  float64
	}{
		{"origin", 0, 1, 1e-14},
		// w(x) = exp(-x^2) + 2i/sqrt(pi) D(x), D Dawson's integral
		{"real axis", 1, complex(math.Exp(-1), 0.6071577058413937), 1e-9},
		// w(iy) = exp(y^2) erfc(y)
		{"imaginary axis", 1i, complex(math.E*math.Erfc(1), 0), 1e-9},
		{"large argument", complex(-77.535144030507098, 141.91224512225062), complex(0.0030616782889356449, -0.0016727139353032337), 1e-9},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Faddeeva(tc.z)
			if err != nil {
				t.Fatalf("Faddeeva error: %v", err)
			}
			assertNear(t, "w", got, tc.want, tc.tol)
		})
	}
}

func TestFaddeevaSymmetries(t *testing.T) {
	for _, z := range []complex128{
		complex(0.3, 0.2), complex(2.5, 1.5), complex(5, 0.5), complex(0.7, 3.9), complex(12, 7),
	} {
		w, err := Faddeeva(z)
		if err != nil {
			t.Fatalf("Faddeeva(%v) error: %v", z, err)
		}
		// w(-conj z) = conj w(z)
		wr, _ := Faddeeva(complex(-real(z), imag(z)))
		assertNear(t, "reflection", wr, cmplx.Conj(w), 1e-12*math.Max(1, cmplx.Abs(w)))

		// w(-z) = 2exp(-z^2) - w(z)
		wn, err := Faddeeva(-z)
		if err != nil {
			t.Fatalf("Faddeeva(%v) error: %v", -z, err)
		}
		want := 2*cmplx.Exp(-z*z) - w
		if d := cmplx.Abs(wn - want); d > 1e-10*math.Max(1, cmplx.Abs(want)) {
			t.Fatalf("w(-z) mismatch at %v: got %v want %v", z, wn, want)
		}
	}
}

func TestFaddeevaAsymptote(t *testing.T) {
	// w(z) ~ i/(sqrt(pi) z) (1 + 1/(2z^2)) for large |z| in the upper half plane.
	z := complex(40, 60)
	w, err := Faddeeva(z)
	if err != nil {
		t.Fatalf("Faddeeva error: %v", err)
	}
	want := 1i / (complex(math.Sqrt(math.Pi), 0) * z) * (1 + 1/(2*z*z))
	if d := cmplx.Abs(w-want) / cmplx.Abs(want); d > 1e-6 {
		t.Fatalf("relative asymptote error %g", d)
	}
}

func TestFaddeevaOverflow(t *testing.T) {
	if _, err := Faddeeva(complex(1, -40)); !errors.Is(err, ErrFaddeevaOverflow) {
		t.Fatalf("Faddeeva deep in the lower half plane error = %v, want ErrFaddeevaOverflow", err)
	}
	if _, err := Faddeeva(complex(1e160, 1)); !errors.Is(err, ErrFaddeevaOverflow) {
		t.Fatalf("Faddeeva huge argument error = %v, want ErrFaddeevaOverflow", err)
	}
}
