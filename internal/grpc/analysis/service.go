// Package analysis exposes the analyzer over gRPC. Messages are
// google.protobuf.Struct so no generated code is needed; the service is
// described by hand below.
package analysis

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "phishguard.v1.AnalysisService"

const (
	methodAnalyze           = "/" + ServiceName + "/Analyze"
	methodExtractFeatures   = "/" + ServiceName + "/ExtractFeatures"
	methodDetectContentType = "/" + ServiceName + "/DetectContentType"
)

// AnalysisServiceServer is the server API for phishguard.v1.AnalysisService
type AnalysisServiceServer interface {
	// Analyze takes {"content"} and returns an AnalysisReport
	Analyze(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// ExtractFeatures takes {"url", "enrich"} and returns the feature vector
	ExtractFeatures(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// DetectContentType takes {"content"} and returns {"content_type"}
	DetectContentType(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterAnalysisServiceServer registers srv with s
func RegisterAnalysisServiceServer(s grpc.ServiceRegistrar, srv AnalysisServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func unaryHandler(method string, call func(AnalysisServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		server := srv.(AnalysisServiceServer)
		if interceptor == nil {
			return call(server, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(server, ctx, req.(*structpb.Struct))
		})
	}
}

// ServiceDesc is the grpc.ServiceDesc for phishguard.v1.AnalysisService
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AnalysisServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Analyze",
			Handler:    unaryHandler(methodAnalyze, AnalysisServiceServer.Analyze),
		},
		{
			MethodName: "ExtractFeatures",
			Handler:    unaryHandler(methodExtractFeatures, AnalysisServiceServer.ExtractFeatures),
		},
		{
			MethodName: "DetectContentType",
			Handler:    unaryHandler(methodDetectContentType, AnalysisServiceServer.DetectContentType),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "phishguard/v1/analysis.proto",
}

// Client is a client for phishguard.v1.AnalysisService
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient creates a client over cc
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Analyze calls AnalysisService.Analyze
func (c *Client) Analyze(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodAnalyze, in, opts...)
}

// ExtractFeatures calls AnalysisService.ExtractFeatures
func (c *Client) ExtractFeatures(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodExtractFeatures, in, opts...)
}

// DetectContentType calls AnalysisService.DetectContentType
func (c *Client) DetectContentType(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodDetectContentType, in, opts...)
}
