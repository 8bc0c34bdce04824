package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "groundwave.v1.PredictionService"

// Full method names.
const (
	PredictMethod         = "/" + ServiceName + "/Predict"
	SweepMethod           = "/" + ServiceName + "/Sweep"
	PredictStationsMethod = "/" + ServiceName + "/PredictStations"
	ListGroundTypesMethod = "/" + ServiceName + "/ListGroundTypes"
	ListStationsMethod    = "/" + ServiceName + "/ListStations"
)

// PredictionServiceServer is the server API. Requests and responses are
// google.protobuf.Struct documents whose keys match the JSON field names of
// the model package, so any gRPC client can call the service without
// generated stubs.
type PredictionServiceServer interface {
	Predict(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Sweep(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PredictStations(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListGroundTypes(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ListStations(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// RegisterPredictionServiceServer registers srv on s.
func RegisterPredictionServiceServer(s grpc.ServiceRegistrar, srv PredictionServiceServer) {
	s.RegisterService(&PredictionServiceDesc, srv)
}

// PredictionServiceDesc describes the service for grpc.Server.
var PredictionServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PredictionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Predict", Handler: unaryHandler(PredictMethod, PredictionServiceServer.Predict)},
		{MethodName: "Sweep", Handler: unaryHandler(SweepMethod, PredictionServiceServer.Sweep)},
		{MethodName: "PredictStations", Handler: unaryHandler(PredictStationsMethod, PredictionServiceServer.PredictStations)},
		{MethodName: "ListGroundTypes", Handler: unaryHandler(ListGroundTypesMethod, PredictionServiceServer.ListGroundTypes)},
		{MethodName: "ListStations", Handler: unaryHandler(ListStationsMethod, PredictionServiceServer.ListStations)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "groundwave/v1/prediction.proto",
}

func unaryHandler[Req any, PReq interface {
	*Req
	proto.Message
}](fullMethod string, call func(PredictionServiceServer, context.Context, PReq) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := PReq(new(Req))
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(PredictionServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(PredictionServiceServer), ctx, req.(PReq))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// PredictionServiceClient is the client API for PredictionService.
type PredictionServiceClient interface {
	Predict(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Sweep(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	PredictStations(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListGroundTypes(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListStations(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type predictionServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewPredictionServiceClient returns a client bound to cc.
func NewPredictionServiceClient(cc grpc.ClientConnInterface) PredictionServiceClient {
	return &predictionServiceClient{cc: cc}
}

func (c *predictionServiceClient) invoke(ctx context.Context, method string, in proto.Message, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *predictionServiceClient) Predict(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, PredictMethod, in, opts)
}

func (c *predictionServiceClient) Sweep(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, SweepMethod, in, opts)
}

func (c *predictionServiceClient) PredictStations(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, PredictStationsMethod, in, opts)
}

func (c *predictionServiceClient) ListGroundTypes(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ListGroundTypesMethod, in, opts)
}

func (c *predictionServiceClient) ListStations(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ListStationsMethod, in, opts)
}
