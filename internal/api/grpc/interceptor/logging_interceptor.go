package interceptor

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"vehicle-rental-backend/internal/logger"
)

type LoggingInterceptor struct{}

func NewLoggingInterceptor() *LoggingInterceptor {
	return &LoggingInterceptor{}
}

// Unary returns a server interceptor that logs every unary RPC and turns
// handler panics into codes.Internal.
func (i *LoggingInterceptor) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Panic in gRPC handler", "method", info.FullMethod, "panic", r)
				err = status.Errorf(codes.Internal, "internal error")
			}
			code := status.Code(err)
			args := []any{"method", info.FullMethod, "code", code.String(), "duration", time.Since(start)}
			if code == codes.OK {
				logger.Debug("gRPC request handled", args...)
			} else {
				logger.Warn("gRPC request failed", append(args, "error", err)...)
			}
		}()
		return handler(ctx, req)
	}
}
