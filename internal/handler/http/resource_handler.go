package http

import (
	"context"
	"strings"

	"shop-crud/internal/apperror"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// ResourceService is the write and lookup side of a resource.
type ResourceService[T any] interface {
	Create(ctx context.Context, body []byte) (*T, error)
	Get(ctx context.Context, id string) (*T, error)
	Update(ctx context.Context, id string, body []byte) (*T, error)
	Delete(ctx context.Context, id string) error
}

// resourceHandler serves the id based routes shared by products and users.
type resourceHandler[T any] struct {
	name    string
	service ResourceService[T]
	tracer  trace.Tracer
}

func newResourceHandler[T any](name string, service ResourceService[T]) resourceHandler[T] {
	return resourceHandler[T]{
		name:    name,
		service: service,
		tracer:  otel.Tracer(name),
	}
}

func (h *resourceHandler[T]) start(c *gin.Context, op string) (context.Context, trace.Span) {
	return h.tracer.Start(c.Request.Context(), h.name+"."+op)
}

func (h *resourceHandler[T]) Create(c *gin.Context) {
	ctx, span := h.start(c, "Create")
	defer span.End()

	if !strings.Contains(c.GetHeader("Content-Type"), "application/json") {
		writeError(c, apperror.Format(MsgInvalidContentType, nil))
		return
	}
	body, err := c.GetRawData()
	if err != nil {
		writeError(c, apperror.Format(MsgFormatError, err))
		return
	}

	doc, err := h.service.Create(ctx, body)
	if err != nil {
		writeError(c, err)
		return
	}
	writeOK(c, doc)
}

func (h *resourceHandler[T]) Get(c *gin.Context) {
	ctx, span := h.start(c, "Get")
	defer span.End()

	doc, err := h.service.Get(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	writeOK(c, doc)
}

func (h *resourceHandler[T]) Update(c *gin.Context) {
	ctx, span := h.start(c, "Update")
	defer span.End()

	body, err := c.GetRawData()
	if err != nil {
		writeError(c, apperror.Format(MsgFormatError, err))
		return
	}

	doc, err := h.service.Update(ctx, c.Param("id"), body)
	if err != nil {
		writeError(c, err)
		return
	}
	writeOK(c, doc)
}

func (h *resourceHandler[T]) Delete(c *gin.Context) {
	ctx, span := h.start(c, "Delete")
	defer span.End()

	if err := h.service.Delete(ctx, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	writeOK(c, nil)
}

func (h *resourceHandler[T]) register(g gin.IRoutes, list gin.HandlerFunc) {
	g.POST("", h.Create)
	g.GET("", list)
	g.GET("/:id", h.Get)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}
