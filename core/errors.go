package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInputOutOfRange is wrapped by every *InputError.
	ErrInputOutOfRange = errors.New("input out of range")
	// ErrNoSolutionConverged means the residue series ran out of modes.
	ErrNoSolutionConverged = errors.New("no solution converged")
	// ErrNumericalInstability means a field evaluation produced NaN or Inf.
	ErrNumericalInstability = errors.New("numerical instability")
	// ErrTooManyPoints rejects a sweep grid larger than MaxSweepPoints.
	ErrTooManyPoints = errors.New("too many sweep points")
)

// ReturnCode is the numeric status reported at the engine boundary.
type ReturnCode int

const (
	Success ReturnCode = 0

	ErrorValidationTxTerminalHeight    ReturnCode = 32
	ErrorValidationRxTerminalHeight    ReturnCode = 33
	ErrorValidationFrequency           ReturnCode = 34
	ErrorValidationTxPower             ReturnCode = 35
	ErrorValidationSurfaceRefractivity ReturnCode = 36
	ErrorValidationPathDistance        ReturnCode = 37
	ErrorValidationEpsilon             ReturnCode = 38
	ErrorValidationSigma               ReturnCode = 39
	ErrorValidationPolarization        ReturnCode = 40
	ErrorNoSolutionConverged           ReturnCode = 41
	ErrorNumericalInstability          ReturnCode = 42
	// ErrorValidationLosslessGround flags epsilon = 1 with sigma = 0, a
	// ground whose surface impedance vanishes.
	ErrorValidationLosslessGround ReturnCode = 43
)

var statusMessages = map[ReturnCode]string{
	Success:                            "Successful execution",
	ErrorValidationTxTerminalHeight:    "TX terminal height is out of range",
	ErrorValidationRxTerminalHeight:    "RX terminal height is out of range",
	ErrorValidationFrequency:           "Frequency is out of range",
	ErrorValidationTxPower:             "Transmit power is out of range",
	ErrorValidationSurfaceRefractivity: "Surface refractivity is out of range",
	ErrorValidationPathDistance:        "Path distance is out of range",
	ErrorValidationEpsilon:             "Epsilon is out of range",
	ErrorValidationSigma:               "Sigma is out of range",
	ErrorValidationPolarization:        "Invalid value for polarization",
	ErrorNoSolutionConverged:           "Residue series did not converge",
	ErrorNumericalInstability:          "Numerical instability in field evaluation",
	ErrorValidationLosslessGround:      "Ground with epsilon = 1 and sigma = 0 has no surface impedance",
}

// String returns the human-readable status message for the code.
func (c ReturnCode) String() string {
	if msg, ok := statusMessages[c]; ok {
		return msg
	}
	return fmt.Sprintf("Undefined return code %d", int(c))
}

// InputError reports the first input field that failed validation.
type InputError struct {
	Field string
	Value float64
	Code  ReturnCode
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s = %g (%s)", ErrInputOutOfRange, e.Field, e.Value, e.Code)
}

func (e *InputError) Unwrap() error { return ErrInputOutOfRange }

// CodeOf maps an engine error onto its ReturnCode. Errors that did not
// originate in the engine map to ErrorNumericalInstability.
func CodeOf(err error) ReturnCode {
	if err == nil {
		return Success
	}
	var ie *InputError
	switch {
	case errors.As(err, &ie):
		return ie.Code
	case errors.Is(err, ErrNoSolutionConverged):
		return ErrorNoSolutionConverged
	default:
		return ErrorNumericalInstability
	}
}
