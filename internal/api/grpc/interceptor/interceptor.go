package interceptor

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"rentshare-backend/internal/logger"

	"github.com/google/uuid"
)

// Unary returns a server interceptor that tags the call with a request id,
// logs it and turns panics into Internal errors.
func Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		ctx = logger.WithRequestID(ctx, requestID(ctx))
		start := time.Now()

		defer func() {
			if p := recover(); p != nil {
				logger.ErrorContext(ctx, "Panic in gRPC handler", "method", info.FullMethod, "panic", p)
				err = status.Error(codes.Internal, "internal server error")
			}
			logger.DebugContext(ctx, "gRPC call",
				"method", info.FullMethod,
				"code", status.Code(err).String(),
				"duration_ms", time.Since(start).Milliseconds())
		}()

		return handler(ctx, req)
	}
}

func requestID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if ids := md.Get("x-request-id"); len(ids) > 0 && ids[0] != "" {
			return ids[0]
		}
	}
	return uuid.NewString()
}
