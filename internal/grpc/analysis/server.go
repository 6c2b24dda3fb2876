package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"phishguard/internal/domain/services"
	"phishguard/pkg/logger"
)

// Server implements AnalysisServiceServer on top of the analysis service
type Server struct {
	service *services.AnalysisService
	logger  *logger.Logger
}

var _ AnalysisServiceServer = (*Server)(nil)

// NewServer creates a new gRPC server
func NewServer(service *services.AnalysisService, log *logger.Logger) *Server {
	return &Server{
		service: service,
		logger:  log.WithComponent("grpc-server"),
	}
}

// Register registers the server with a gRPC server
func (s *Server) Register(grpcServer grpc.ServiceRegistrar) {
	RegisterAnalysisServiceServer(grpcServer, s)
}

// Analyze classifies req.content
func (s *Server) Analyze(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	content, err := requiredString(req, "content")
	if err != nil {
		return nil, err
	}

	report, err := s.service.Analyze(ctx, content)
	if err != nil {
		return nil, s.toStatus(err, "failed to analyze content")
	}

	return toStruct(report)
}

// ExtractFeatures returns the feature vector for req.url, enriched when
// req.enrich is true
func (s *Server) ExtractFeatures(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	rawURL, err := requiredString(req, "url")
	if err != nil {
		return nil, err
	}
	enrich := req.GetFields()["enrich"].GetBoolValue()

	features, err := s.service.ExtractFeatures(ctx, rawURL, enrich)
	if err != nil {
		return nil, s.toStatus(err, "failed to extract features")
	}

	return toStruct(features)
}

// DetectContentType reports whether req.content is a URL or a message
func (s *Server) DetectContentType(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	content, err := requiredString(req, "content")
	if err != nil {
		return nil, err
	}

	return structpb.NewStruct(map[string]any{
		"content_type": string(s.service.Detect(content)),
	})
}

func (s *Server) toStatus(err error, message string) error {
	switch {
	case errors.Is(err, services.ErrInputTooShort):
		return status.Error(codes.InvalidArgument, services.InputTooShortMessage)
	case errors.Is(err, services.ErrInputTooLong):
		return status.Error(codes.InvalidArgument, "input exceeds the maximum length")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, message)
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, message)
	default:
		s.logger.Error().Err(err).Msg(message)
		return status.Error(codes.Internal, message)
	}
}

func requiredString(req *structpb.Struct, field string) (string, error) {
	v, ok := req.GetFields()[field]
	if !ok {
		return "", status.Errorf(codes.InvalidArgument, "%s is required", field)
	}
	sv, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", status.Errorf(codes.InvalidArgument, "%s must be a string", field)
	}
	return sv.StringValue, nil
}

// toStruct converts a JSON-tagged value into a Struct
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return out, nil
}

// LoggingInterceptor logs every unary call with its status code and duration
func LoggingInterceptor(log *logger.Logger) grpc.UnaryServerInterceptor {
	log = log.WithComponent("grpc")
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		event := log.Info()
		if code != codes.OK && code != codes.InvalidArgument {
			event = log.Warn()
		}
		event.
			Str("method", info.FullMethod).
			Str("code", code.String()).
			Dur("duration", time.Since(start)).
			Msg("rpc completed")

		return resp, err
	}
}
