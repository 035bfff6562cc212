package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shop-crud/internal/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// HTTPClient sends JSON requests to one base URL and propagates the trace context.
type HTTPClient struct {
	client  *http.Client
	baseURL string
	headers map[string]string
	tracer  trace.Tracer
}

// RequestOptions for request configuration
type RequestOptions struct {
	Method      string
	Path        string
	Headers     map[string]string
	QueryParams url.Values
	Body        any
}

// Response is the raw outcome of a request.
type Response struct {
	StatusCode int
	Headers    http.Header
	RawBody    []byte
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		headers: make(map[string]string),
		tracer:  otel.Tracer("HttpClient"),
	}
}

// SetDefaultHeader adds a header sent with every request.
func (c *HTTPClient) SetDefaultHeader(key, value string) {
	c.headers[key] = value
}

func (c *HTTPClient) Do(ctx context.Context, opts RequestOptions) (*Response, error) {
	fullURL, err := c.buildURL(opts.Path, opts.QueryParams)
	if err != nil {
		return nil, fmt.Errorf("build URL: %w", err)
	}

	var bodyReader io.Reader
	if opts.Body != nil {
		b, err := encodeBody(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	ctx, span := c.tracer.Start(ctx, "HttpClient "+opts.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", opts.Method),
			attribute.String("url.full", fullURL),
		))
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, opts.Method, fullURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req, opts.Headers)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	logger.Info(ctx, "HTTP", logger.RequestAttrs(req, "outgoing::request")...)
	start := time.Now()

	resp, err := c.client.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("read response body: %w", err)
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode >= 500 {
		span.SetStatus(codes.Error, resp.Status)
	}
	logger.Info(ctx, "HTTP", logger.ResponseAttrs(req, resp.Header, resp.StatusCode, rawBody, time.Since(start), "outgoing::response")...)

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		RawBody:    rawBody,
	}, nil
}

// buildURL joins path to the base URL unless it is already absolute.
func (c *HTTPClient) buildURL(path string, query url.Values) (string, error) {
	fullURL := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		fullURL = c.baseURL + "/" + strings.TrimLeft(path, "/")
	}
	if len(query) == 0 {
		return fullURL, nil
	}

	u, err := url.Parse(fullURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func encodeBody(body any) ([]byte, error) {
	switch v := body.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	case io.Reader:
		return io.ReadAll(v)
	default:
		return json.Marshal(body)
	}
}

func (c *HTTPClient) setHeaders(req *http.Request, headers map[string]string) {
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if req.Body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response) IsClientError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

func (r *Response) IsServerError() bool {
	return r.StatusCode >= 500
}

func (r *Response) TraceID() string {
	return r.Headers.Get("X-Trace-ID")
}

// logAttrs summarises a response for the caller's own log line.
func (r *Response) logAttrs() []slog.Attr {
	return []slog.Attr{
		slog.Int("http.status", r.StatusCode),
		slog.String("trace_id.remote", r.TraceID()),
	}
}
