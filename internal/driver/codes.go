package driver

import (
	"errors"
	"fmt"
)

// Code is a process exit status owned by the driver, as opposed to the
// engine's core.ReturnCode which is written into the report.
type Code int

const (
	CodeSuccess Code = 0

	CodeMissingOption     Code = 1000
	CodeInvalidOption     Code = 1001
	CodeOpeningInputFile  Code = 1002
	CodeOpeningOutputFile Code = 1003
	CodeValidationInFile  Code = 1004
	CodeValidationOutFile Code = 1005
	// CodeInterrupted means the run was cancelled before the engine
	// finished; no report is written.
	CodeInterrupted Code = 1006

	// CodeParse is an unknown key or a malformed line. The per-key codes
	// follow it in input-file order.
	CodeParse                    Code = 1100
	CodeParseTxTerminalHeight    Code = 1101
	CodeParseRxTerminalHeight    Code = 1102
	CodeParseFrequency           Code = 1103
	CodeParseTxPower             Code = 1104
	CodeParseSurfaceRefractivity Code = 1105
	CodeParsePathDistance        Code = 1106
	CodeParseEpsilon             Code = 1107
	CodeParseSigma               Code = 1108
	CodeParsePolarization        Code = 1109
)

var codeMessages = map[Code]string{
	CodeSuccess:                  "Successful execution",
	CodeMissingOption:            "No value provided for given argument",
	CodeInvalidOption:            "Unknown option specified",
	CodeOpeningInputFile:         "Failed to open the input file for reading",
	CodeOpeningOutputFile:        "Failed to open the output file for writing",
	CodeValidationInFile:         "Option -i is required but was not provided",
	CodeValidationOutFile:        "Option -o is required but was not provided",
	CodeInterrupted:              "Run interrupted before the prediction finished",
	CodeParse:                    "Failed parsing inputs; unknown parameter",
	CodeParseTxTerminalHeight:    "Unable to parse TX terminal height value",
	CodeParseRxTerminalHeight:    "Unable to parse RX terminal height value",
	CodeParseFrequency:           "Unable to parse frequency value",
	CodeParseTxPower:             "Unable to parse transmit power value",
	CodeParseSurfaceRefractivity: "Unable to parse surface refractivity value",
	CodeParsePathDistance:        "Unable to parse path distance value",
	CodeParseEpsilon:             "Unable to parse epsilon value",
	CodeParseSigma:               "Unable to parse sigma value",
	CodeParsePolarization:        "Unable to parse polarization value",
}

func (c Code) String() string {
	if msg, ok := codeMessages[c]; ok {
		return msg
	}
	return fmt.Sprintf("Undefined return code %d", int(c))
}

// Error carries a driver Code through ordinary error returns.
type Error struct {
	Code Code
	// Key is the option or input-file key involved, if any.
	Key string
	Err error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s Error: %s", DriverName, e.Code)
	if e.Key != "" {
		msg += fmt.Sprintf(" [%s]", e.Key)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func newError(code Code, key string, err error) *Error {
	return &Error{Code: code, Key: key, Err: err}
}

// CodeOf extracts the driver code from err. Nil maps to CodeSuccess and
// errors that did not come from the driver map to CodeParse.
func CodeOf(err error) Code {
	if err == nil {
		return CodeSuccess
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeParse
}
