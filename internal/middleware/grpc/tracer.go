package middleware_grpc

import (
	"context"
	"log/slog"
	"time"

	"shop-crud/internal/logger"
	"shop-crud/internal/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// UnaryTracingInterceptor continues the caller's trace from the incoming metadata and logs
// each call on entry and on completion.
func UnaryTracingInterceptor() grpc.UnaryServerInterceptor {
	tracer := otel.Tracer("GrpcMiddleware")

	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp any, err error) {
		md, _ := metadata.FromIncomingContext(ctx)
		ctx = otel.GetTextMapPropagator().Extract(ctx, telemetry.MetadataTextMapCarrier(md))

		// Start span with gRPC full method name as operation name
		ctx, span := tracer.Start(ctx, info.FullMethod,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("rpc.system", "grpc")),
		)
		defer span.End()

		attrs := logger.GRPCRequestAttrs(info.FullMethod, md, req, "incoming::request")
		if p, ok := peer.FromContext(ctx); ok {
			attrs = append(attrs, slog.String("grpc.remote", p.Addr.String()))
		}
		logger.Info(ctx, "GRPC", attrs...)

		start := time.Now()
		resp, err = handler(ctx, req)
		code := status.Code(err)

		span.SetAttributes(attribute.String("rpc.grpc.status_code", code.String()))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
		}

		logger.Info(ctx, "GRPC", logger.GRPCResponseAttrs(info.FullMethod, code, resp, time.Since(start), "incoming::response")...)
		return resp, err
	}
}
