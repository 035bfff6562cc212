package http

import (
	"context"
	"net/http"

	"shop-crud/internal/logger"
	"shop-crud/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
)

type HealthChecker interface {
	Check(ctx context.Context) service.HealthStatus
}

type HealthHandler struct {
	service HealthChecker
}

var HttpHealthHandlerTracer = otel.Tracer("HttpHealthHandler")

func NewHealthHandler(service HealthChecker) *HealthHandler {
	return &HealthHandler{
		service: service,
	}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, span := HttpHealthHandlerTracer.Start(c.Request.Context(), "HttpHealthHandler.Check")
	defer span.End()
	logger.Debug(ctx, "HttpHealthHandler")

	status := h.service.Check(ctx)

	overall, code := service.StatusUp, http.StatusOK
	if !status.Healthy() {
		overall, code = service.StatusDown, http.StatusInternalServerError
	}

	c.JSON(code, gin.H{
		"status": overall,
		"data": gin.H{
			"mongodb": status.Mongo,
		},
	})
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/healthz", h.Check)
}
