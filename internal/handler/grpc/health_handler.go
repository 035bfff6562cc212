package grpc

import (
	"context"

	"shop-crud/internal/service"

	"go.opentelemetry.io/otel"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// ServiceName is the name a client checks for this service specifically; "" checks the server.
const ServiceName = "shop-crud"

type HealthChecker interface {
	Check(ctx context.Context) service.HealthStatus
}

// HealthHandler answers grpc.health.v1 checks from the MongoDB reachability.
type HealthHandler struct {
	healthpb.UnimplementedHealthServer
	service HealthChecker
}

var GrpcHealthHandlerTracer = otel.Tracer("GrpcHealthHandler")

func NewHealthHandler(service HealthChecker) *HealthHandler {
	return &HealthHandler{service: service}
}

func (h *HealthHandler) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	ctx, span := GrpcHealthHandlerTracer.Start(ctx, "GrpcHealthHandler.Check")
	defer span.End()

	if s := req.GetService(); s != "" && s != ServiceName {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", s)
	}

	resp := &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}
	if !h.service.Check(ctx).Healthy() {
		resp.Status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	return resp, nil
}
