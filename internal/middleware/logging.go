package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/PaulBabatuyi/surepay-gRPC/internal/logger"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/metrics"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// RequestIDHeader is the metadata key carrying the request id both ways.
const RequestIDHeader = "x-request-id"

func requestContext(ctx context.Context) (context.Context, string) {
	id := ""
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(RequestIDHeader); len(v) > 0 {
			id = v[0]
		}
	}
	if id == "" {
		id = logger.NewRequestID()
	}
	return logger.WithRequestID(ctx, id), id
}

// LoggingUnaryInterceptor tags each call with a request id, logs its
// outcome and counts it by status code. It should run first in the chain.
func LoggingUnaryInterceptor(log *slog.Logger, m *metrics.Metrics) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		ctx, id := requestContext(ctx)
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, id))

		start := time.Now()
		resp, err := handler(ctx, req)
		observe(ctx, log, m, info.FullMethod, start, err)
		return resp, err
	}
}

// LoggingStreamInterceptor is the stream equivalent of LoggingUnaryInterceptor.
func LoggingStreamInterceptor(log *slog.Logger, m *metrics.Metrics) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		ctx, id := requestContext(ss.Context())
		_ = ss.SetHeader(metadata.Pairs(RequestIDHeader, id))

		start := time.Now()
		err := handler(srv, &WrappedStream{ServerStream: ss, Ctx: ctx})
		observe(ctx, log, m, info.FullMethod, start, err)
		return err
	}
}

func observe(ctx context.Context, log *slog.Logger, m *metrics.Metrics, method string, start time.Time, err error) {
	code := status.Code(err)
	m.ObserveRPC(method, code.String())

	l := logger.FromContext(ctx, log)
	attrs := []any{"method", method, "code", code.String(), "duration", time.Since(start)}
	if err != nil {
		l.WarnContext(ctx, "rpc failed", append(attrs, "err", err)...)
		return
	}
	l.InfoContext(ctx, "rpc", attrs...)
}

// WrappedStream overrides the context of a server stream.
type WrappedStream struct {
	grpc.ServerStream
	Ctx context.Context
}

func (w *WrappedStream) Context() context.Context { return w.Ctx }
