// Package special implements the complex special functions used by the
// ground-wave solutions: Airy functions of the first, second and third kind,
// roots of the third-kind impedance equation, and the Faddeeva function.
package special

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mathext"
)

// Kind selects the Airy-type function evaluated by Airy.
type Kind int

const (
	AiryAi Kind = iota
	AiryAiPrime
	AiryBi
	AiryBiPrime
	WOne // Airy function of the third kind, first branch
	WOnePrime
	WTwo // Airy function of the third kind, second branch
	WTwoPrime
)

func (k Kind) String() string {
	switch k {
	case AiryAi:
		return "Ai"
	case AiryAiPrime:
		return "Ai'"
	case AiryBi:
		return "Bi"
	case AiryBiPrime:
		return "Bi'"
	case WOne:
		return "Wi1"
	case WOnePrime:
		return "Wi1'"
	case WTwo:
		return "Wi2"
	case WTwoPrime:
		return "Wi2'"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) thirdKind() bool { return k >= WOne && k <= WTwoPrime }

// Scaling selects the normalisation of the third-kind functions. Ai and Bi
// ignore it.
//
//	Hufford: Wi1 = Ai - jBi, Wi2 = Ai + jBi
//	Wait:    w1 = -j*sqrt(pi)*(Ai + jBi), w2 = +j*sqrt(pi)*(Ai - jBi)
type Scaling int

const (
	NoScaling Scaling = iota
	Hufford
	Wait
)

func (s Scaling) String() string {
	switch s {
	case NoScaling:
		return "none"
	case Hufford:
		return "hufford"
	case Wait:
		return "wait"
	default:
		return fmt.Sprintf("Scaling(%d)", int(s))
	}
}

var (
	// ErrInvalidKind is returned for an unknown Kind or one a routine does not accept.
	ErrInvalidKind = errors.New("invalid airy function kind")
	// ErrInvalidScaling is returned for an unknown Scaling or NoScaling on a third-kind function.
	ErrInvalidScaling = errors.New("invalid airy function scaling")
)

var (
	sqrtPi = math.Sqrt(math.Pi)

	omega    = cmplx.Rect(1, 2*math.Pi/3)  // e^{+2 pi i/3}
	omegaBar = cmplx.Rect(1, -2*math.Pi/3) // e^{-2 pi i/3}

	rotPlus6  = cmplx.Rect(1, math.Pi/6)
	rotMinus6 = cmplx.Rect(1, -math.Pi/6)
	rotPlus3  = cmplx.Rect(1, math.Pi/3)
	rotMinus3 = cmplx.Rect(1, -math.Pi/3)
	rot5Plus  = cmplx.Rect(1, 5*math.Pi/6)
	rot5Minus = cmplx.Rect(1, -5*math.Pi/6)
)

// Airy evaluates the Airy-type function selected by kind at z.
func Airy(z complex128, kind Kind, scaling Scaling) (complex128, error) {
	if scaling < NoScaling || scaling > Wait {
		return 0, fmt.Errorf("%w: %v", ErrInvalidScaling, scaling)
	}
	switch kind {
	case AiryAi:
		return mathext.AiryAi(z), nil
	case AiryAiPrime:
		return mathext.AiryAiDeriv(z), nil
	case AiryBi:
		return bi(z), nil
	case AiryBiPrime:
		return biPrime(z), nil
	}
	if !kind.thirdKind() {
		return 0, fmt.Errorf("%w: %v", ErrInvalidKind, kind)
	}

	switch scaling {
	case Hufford:
		return hufford(z, kind), nil
	case Wait:
		switch kind {
		case WOne, WOnePrime:
			// w1 shares its zeros with Hufford's Wi2.
			return complex(0, -sqrtPi) * hufford(z, kind+2), nil
		default:
			return complex(0, sqrtPi) * hufford(z, kind-2), nil
		}
	default:
		return 0, fmt.Errorf("%w: %v for %v", ErrInvalidScaling, scaling, kind)
	}
}

// hufford evaluates Wi1 = Ai - jBi and Wi2 = Ai + jBi (and derivatives)
// through a single rotated Ai call, which avoids the cancellation between
// Ai and Bi where Bi dominates:
//
//	Ai(z) - jBi(z) = 2 e^{-i pi/3} Ai(z e^{+2 pi i/3})
//	Ai(z) + jBi(z) = 2 e^{+i pi/3} Ai(z e^{-2 pi i/3})
func hufford(z complex128, kind Kind) complex128 {
	switch kind {
	case WOne:
		return 2 * rotMinus3 * mathext.AiryAi(z*omega)
	case WOnePrime:
		return 2 * rotPlus3 * mathext.AiryAiDeriv(z*omega)
	case WTwo:
		return 2 * rotPlus3 * mathext.AiryAi(z*omegaBar)
	default: // WTwoPrime
		return 2 * rotMinus3 * mathext.AiryAiDeriv(z*omegaBar)
	}
}

// bi uses Bi(z) = e^{i pi/6} Ai(z w) + e^{-i pi/6} Ai(z w*), w = e^{2 pi i/3}.
func bi(z complex128) complex128 {
	return rotPlus6*mathext.AiryAi(z*omega) + rotMinus6*mathext.AiryAi(z*omegaBar)
}

func biPrime(z complex128) complex128 {
	return rot5Plus*mathext.AiryAiDeriv(z*omega) + rot5Minus*mathext.AiryAiDeriv(z*omegaBar)
}

// derivativeOf returns the derivative kind paired with a third-kind function.
func derivativeOf(kind Kind) Kind {
	return kind + 1
}
