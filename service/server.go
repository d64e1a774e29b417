package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang/protobuf/ptypes/empty"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"gomck/property"
	"gomck/runner"
)

// Serves the verification service from a started runner.
type Server struct {
	runner *runner.Runner
	logger *zap.Logger
}

func NewServer(r *runner.Runner, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{runner: r, logger: logger}
}

// Create a grpc server with the verification service registered, logging every call.
func NewGrpcServer(srv VerificationServer, logger *zap.Logger, opts ...grpc.ServerOption) *grpc.Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = append(opts, grpc.UnaryInterceptor(UnaryLoggingInterceptor(logger)))
	s := grpc.NewServer(opts...)
	RegisterVerificationServer(s, srv)
	return s
}

// Create a UnaryServerInterceptor that logs the method, duration and status code of each call.
func UnaryLoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Debug("Handled call",
			zap.String("method", info.FullMethod),
			zap.Duration("duration", time.Since(start)),
			zap.Stringer("code", status.Code(err)),
		)
		return resp, err
	}
}

// Translates the errors of the runner to grpc status errors.
func statusError(err error) error {
	var parseErr *property.ParseError
	switch {
	case errors.As(err, &parseErr):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, runner.ErrRunning):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, runner.ErrNotStarted), errors.Is(err, runner.ErrStopped):
		return status.Error(codes.Unavailable, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

func (s *Server) Step(ctx context.Context, in *structpb.Struct) (*wrapperspb.StringValue, error) {
	fields := in.GetFields()
	prop, ok := fields[propertyField]
	if !ok || prop.GetStringValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "service: the request has no property")
	}
	limit := -1
	if value, ok := fields[maxRefinements]; ok {
		limit = int(value.GetNumberValue())
	}
	id, err := s.runner.Step(prop.GetStringValue(), limit)
	if err != nil {
		return nil, statusError(err)
	}
	s.logger.Info("Started verification", zap.Stringer("run", id), zap.String("property", prop.GetStringValue()))
	return wrapperspb.String(id.String()), nil
}

func (s *Server) Status(ctx context.Context, in *empty.Empty) (*structpb.Struct, error) {
	out, err := newReport(s.runner.Status()).toStruct()
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func (s *Server) Reset(ctx context.Context, in *empty.Empty) (*empty.Empty, error) {
	if err := s.runner.Reset(); err != nil {
		return nil, statusError(err)
	}
	return &emptypb.Empty{}, nil
}
