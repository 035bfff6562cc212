package middleware_http

import (
	"bytes"
	"fmt"
	"log/slog"
	"time"

	"shop-crud/internal/logger"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// bodyWriter keeps a copy of the response body, up to MaxBodyLogged.
type bodyWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyWriter) Write(b []byte) (int, error) {
	if room := logger.MaxBodyLogged - w.buf.Len(); room > 0 {
		if len(b) < room {
			room = len(b)
		}
		w.buf.Write(b[:room])
	}
	return w.ResponseWriter.Write(b)
}

func (w *bodyWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// Trace starts a server span per request, continuing an incoming trace context, returns
// its trace id in X-Trace-ID and logs the request and the response.
func Trace() gin.HandlerFunc {
	tracer := otel.Tracer("HttpMiddleware")
	return func(c *gin.Context) {
		r := c.Request
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("url.path", r.URL.Path),
			))
		defer span.End()

		c.Request = r.WithContext(ctx)
		logger.Info(ctx, "HTTP", logger.RequestAttrs(c.Request, "incoming::request")...)

		bw := &bodyWriter{ResponseWriter: c.Writer}
		c.Writer = bw
		c.Header("X-Trace-ID", span.SpanContext().TraceID().String())

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		status := bw.Status()
		if route := c.FullPath(); route != "" {
			span.SetName(r.Method + " " + route)
			span.SetAttributes(attribute.String("http.route", route))
		}
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		switch {
		case status >= 500:
			span.SetStatus(codes.Error, "internal server error")
		case status >= 400:
			span.SetStatus(codes.Error, "client error")
		default:
			span.SetStatus(codes.Ok, "")
		}

		logger.Info(ctx, "HTTP", logger.ResponseAttrs(c.Request, bw.Header(), status, bw.buf.Bytes(), duration, "incoming::response")...)
	}
}

// RecordPanic marks the request span as failed by a recovered panic.
func RecordPanic(c *gin.Context, rec any) {
	err := errFromRecover(rec)
	span := trace.SpanFromContext(c.Request.Context())
	span.RecordError(err)
	span.SetStatus(codes.Error, "panic occurred")
	logger.Error(c.Request.Context(), "Recovered from panic", slog.String("error", err.Error()))
}

func errFromRecover(rec any) error {
	if err, ok := rec.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", rec)
}
