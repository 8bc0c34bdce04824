package rpc

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/protoadapt"

	"github.com/signalsfoundry/groundwave/core"
	"github.com/signalsfoundry/groundwave/geopath"
	"github.com/signalsfoundry/groundwave/kb"
)

// ErrorDomain is the ErrorInfo domain attached to engine failures.
const ErrorDomain = "groundwave.signalsfoundry.github.com"

// ToStatusError maps engine, catalogue and request errors onto gRPC status
// codes. Engine failures carry an ErrorInfo detail with the numeric return
// code; range violations also carry a BadRequest naming the field.
func ToStatusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())

	case errors.Is(err, core.ErrInputOutOfRange):
		st := status.New(codes.InvalidArgument, err.Error())
		var ie *core.InputError
		if errors.As(err, &ie) {
			st = withDetails(st, errorInfo(ie.Code), &errdetails.BadRequest{
				FieldViolations: []*errdetails.BadRequest_FieldViolation{{
					Field:       ie.Field,
					Description: fmt.Sprintf("%s: %g", ie.Code, ie.Value),
				}},
			})
		}
		return st.Err()

	case errors.Is(err, core.ErrNoSolutionConverged):
		return withDetails(status.New(codes.FailedPrecondition, err.Error()), errorInfo(core.ErrorNoSolutionConverged)).Err()
	case errors.Is(err, core.ErrNumericalInstability):
		return withDetails(status.New(codes.Internal, err.Error()), errorInfo(core.ErrorNumericalInstability)).Err()

	case errors.Is(err, kb.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, core.ErrTooManyPoints),
		errors.Is(err, geopath.ErrNotTransmitter):
		return status.Error(codes.InvalidArgument, err.Error())

	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func errorInfo(code core.ReturnCode) *errdetails.ErrorInfo {
	return &errdetails.ErrorInfo{
		Reason: "LFMF_RETURN_CODE_" + strconv.Itoa(int(code)),
		Domain: ErrorDomain,
		Metadata: map[string]string{
			"return_code": strconv.Itoa(int(code)),
			"message":     code.String(),
		},
	}
}

func withDetails(st *status.Status, details ...protoadapt.MessageV1) *status.Status {
	if withD, err := st.WithDetails(details...); err == nil {
		return withD
	}
	return st
}

// ReturnCodeFromStatus recovers the engine return code from an error
// produced by ToStatusError. ok is false when the error carries none.
func ReturnCodeFromStatus(err error) (core.ReturnCode, bool) {
	st, ok := status.FromError(err)
	if !ok {
		return 0, false
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok && info.GetDomain() == ErrorDomain {
			n, err := strconv.Atoi(info.GetMetadata()["return_code"])
			if err != nil {
				return 0, false
			}
			return core.ReturnCode(n), true
		}
	}
	return 0, false
}
