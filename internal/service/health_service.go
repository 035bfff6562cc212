package service

import (
	"context"
	"log/slog"
	"time"

	"shop-crud/internal/logger"

	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/otel"
)

const (
	StatusUp   = "UP"
	StatusDown = "DOWN"
)

// Pinger is satisfied by *mongo.Client.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

type HealthService struct {
	mongo   Pinger
	timeout time.Duration
}

type HealthStatus struct {
	Mongo string
}

func (s HealthStatus) Healthy() bool {
	return s.Mongo == StatusUp
}

var HealthServiceTracer = otel.Tracer("HealthService")

func NewHealthService(mongo Pinger) *HealthService {
	return &HealthService{
		mongo:   mongo,
		timeout: 2 * time.Second,
	}
}

func (s *HealthService) Check(ctx context.Context) HealthStatus {
	ctx, span := HealthServiceTracer.Start(ctx, "HealthService.Check")
	defer span.End()
	logger.Debug(ctx, "Service")

	status := HealthStatus{Mongo: StatusUp}

	// MongoDB
	mongoCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.mongo.Ping(mongoCtx, readpref.Primary()); err != nil {
		logger.Warn(ctx, "MongoDB ping failed", slog.String("error", err.Error()))
		status.Mongo = StatusDown
	}

	return status
}
