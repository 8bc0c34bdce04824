package special

import (
	"errors"
	"math"
)

// ErrFaddeevaOverflow is returned when w(z) cannot be represented.
var ErrFaddeevaOverflow = errors.New("faddeeva function overflow")

const (
	twoOverSqrtPi = 1.12837916709551257388
	maxComponent  = 0.5e154
	maxExpArg     = 708.503061461606
	maxTrigArg    = 3.53711887601422e15
)

// Faddeeva returns w(z) = exp(-z^2) erfc(-iz) for any z, to roughly 14
// significant digits (Poppe and Wijers, ACM TOMS algorithm 680).
//
// w is evaluated for the first-quadrant image of z and reflected with
// w(-z) = 2exp(-z^2) - w(z) and w(-conj(z)) = conj(w(z)). Near the origin a
// power series is used, far from it Laplace's continued fraction, and in the
// band between a truncated Taylor expansion driven by the continued fraction.
func Faddeeva(z complex128) (complex128, error) {
	x, y := real(z), imag(z)
	ax, ay := math.Abs(x), math.Abs(y)
	if ax > maxComponent || ay > maxComponent {
		return 0, ErrFaddeevaOverflow
	}

	xs, ys := ax/6.3, ay/4.4
	rho2 := xs*xs + ys*ys
	xquad := ax*ax - ay*ay
	yquad := 2 * ax * ay

	// u+iv is w in the first quadrant; u2+iv2 is exp(-z^2) there when the
	// series branch computed it.
	var u, v, u2, v2 float64

	series := rho2 < 0.085264
	if series {
		r := (1 - 0.85*ys) * math.Sqrt(rho2)
		n := int(6 + 72*r)
		j := 2*n + 1
		xsum, ysum := 1/float64(j), 0.0
		for i := n; i > 0; i-- {
			j -= 2
			fi := float64(i)
			xaux := (xsum*xquad - ysum*yquad) / fi
			ysum = (xsum*yquad + ysum*xquad) / fi
			xsum = xaux + 1/float64(j)
		}
		u1 := 1 - twoOverSqrtPi*(xsum*ay+ysum*ax)
		v1 := twoOverSqrtPi * (xsum*ax - ysum*ay)
		e := math.Exp(-xquad)
		u2 = e * math.Cos(yquad)
		v2 = -e * math.Sin(yquad)
		u = u1*u2 - v1*v2
		v = u1*v2 + v1*u2
	} else {
		var h, h2, lambda float64
		var kapn, nu int
		if rho2 > 1 {
			nu = int(3 + 1442/(26*math.Sqrt(rho2)+77))
		} else {
			r := (1 - ys) * math.Sqrt(1-rho2)
			h = 1.88 * r
			h2 = 2 * h
			kapn = int(7 + 34*r)
			nu = int(16 + 26*r)
		}
		taylor := h > 0
		if taylor {
			lambda = math.Pow(h2, float64(kapn))
		}

		var rx, ry, sx, sy float64
		for n := nu; n >= 0; n-- {
			np1 := float64(n + 1)
			tx := ay + h + np1*rx
			ty := ax - np1*ry
			c := 0.5 / (tx*tx + ty*ty)
			rx = c * tx
			ry = c * ty
			if taylor && n <= kapn {
				tx = lambda + sx
				sx = rx*tx - ry*sy
				sy = ry*tx + rx*sy
				lambda /= h2
			}
		}
		if taylor {
			u, v = twoOverSqrtPi*sx, twoOverSqrtPi*sy
		} else {
			u, v = twoOverSqrtPi*rx, twoOverSqrtPi*ry
		}
		if ay == 0 {
			u = math.Exp(-ax * ax)
		}
	}

	if y < 0 {
		if series {
			u2, v2 = 2*u2, 2*v2
		} else {
			if yquad > maxTrigArg || -xquad > maxExpArg {
				return 0, ErrFaddeevaOverflow
			}
			e := 2 * math.Exp(-xquad)
			u2 = e * math.Cos(yquad)
			v2 = -e * math.Sin(yquad)
		}
		u, v = u2-u, v2-v
		if x > 0 {
			v = -v
		}
	} else if x < 0 {
		v = -v
	}
	return complex(u, v), nil
}
