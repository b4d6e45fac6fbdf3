package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName = "payslip.v1.PayslipService"

	ExtractMethod            = "/" + ServiceName + "/Extract"
	ValidateMethod           = "/" + ServiceName + "/Validate"
	SupportedCountriesMethod = "/" + ServiceName + "/SupportedCountries"
)

// PayslipServiceServer is the server API. Messages are google.protobuf.Struct
// so the record shape stays the JSON one.
type PayslipServiceServer interface {
	Extract(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Validate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SupportedCountries(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterPayslipServiceServer(s grpc.ServiceRegistrar, srv PayslipServiceServer) {
	s.RegisterService(&PayslipServiceDesc, srv)
}

var PayslipServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PayslipServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Extract", Handler: unaryHandler(ExtractMethod, PayslipServiceServer.Extract)},
		{MethodName: "Validate", Handler: unaryHandler(ValidateMethod, PayslipServiceServer.Validate)},
		{MethodName: "SupportedCountries", Handler: unaryHandler(SupportedCountriesMethod, PayslipServiceServer.SupportedCountries)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "payslip/v1/payslip.proto",
}

type unaryMethod func(PayslipServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(PayslipServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(PayslipServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// PayslipServiceClient is a thin client over a connection.
type PayslipServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewPayslipServiceClient(cc grpc.ClientConnInterface) *PayslipServiceClient {
	return &PayslipServiceClient{cc: cc}
}

func (c *PayslipServiceClient) Extract(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ExtractMethod, in, opts...)
}

func (c *PayslipServiceClient) Validate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ValidateMethod, in, opts...)
}

func (c *PayslipServiceClient) SupportedCountries(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, SupportedCountriesMethod, &structpb.Struct{}, opts...)
}

func (c *PayslipServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
