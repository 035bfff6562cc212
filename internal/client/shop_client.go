package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"shop-crud/internal/logger"
	"shop-crud/internal/model"
)

// Envelope is the body shape every shop endpoint answers with.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Result  T      `json:"result"`
}

// APIError is a response with success=false.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}

// ShopClient calls the product and user endpoints.
type ShopClient struct {
	http *HTTPClient
}

func NewShopClient(hc *HTTPClient) *ShopClient {
	return &ShopClient{http: hc}
}

// call sends the request and decodes the envelope. A failed envelope becomes *APIError.
func call[T any](ctx context.Context, c *ShopClient, opts RequestOptions) (T, error) {
	var zero T
	resp, err := c.http.Do(ctx, opts)
	if err != nil {
		return zero, err
	}
	logger.Debug(ctx, "Shop API response", resp.logAttrs()...)

	var env Envelope[T]
	if err := json.Unmarshal(resp.RawBody, &env); err != nil {
		return zero, fmt.Errorf("decode %s %s response (status %d): %w", opts.Method, opts.Path, resp.StatusCode, err)
	}
	if !env.Success {
		return zero, &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}
	return env.Result, nil
}

func (c *ShopClient) CreateProduct(ctx context.Context, p map[string]any) (*model.Product, error) {
	return call[*model.Product](ctx, c, RequestOptions{Method: http.MethodPost, Path: "/products", Body: p})
}

func (c *ShopClient) ListProducts(ctx context.Context, q url.Values) ([]model.Product, error) {
	return call[[]model.Product](ctx, c, RequestOptions{Method: http.MethodGet, Path: "/products", QueryParams: q})
}

func (c *ShopClient) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	return call[*model.Product](ctx, c, RequestOptions{Method: http.MethodGet, Path: "/products/" + url.PathEscape(id)})
}

func (c *ShopClient) UpdateProduct(ctx context.Context, id string, patch map[string]any) (*model.Product, error) {
	return call[*model.Product](ctx, c, RequestOptions{Method: http.MethodPatch, Path: "/products/" + url.PathEscape(id), Body: patch})
}

func (c *ShopClient) DeleteProduct(ctx context.Context, id string) error {
	_, err := call[json.RawMessage](ctx, c, RequestOptions{Method: http.MethodDelete, Path: "/products/" + url.PathEscape(id)})
	return err
}

func (c *ShopClient) CreateUser(ctx context.Context, u map[string]any) (*model.User, error) {
	return call[*model.User](ctx, c, RequestOptions{Method: http.MethodPost, Path: "/users", Body: u})
}

func (c *ShopClient) DeleteUser(ctx context.Context, id string) error {
	_, err := call[json.RawMessage](ctx, c, RequestOptions{Method: http.MethodDelete, Path: "/users/" + url.PathEscape(id)})
	return err
}
