package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method, path, query, contentType string
	body                             map[string]any
}

func newServer(t *testing.T, status int, reply string) (*ShopClient, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method, rec.path, rec.query = r.Method, r.URL.Path, r.URL.RawQuery
		rec.contentType = r.Header.Get("Content-Type")
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			_ = json.Unmarshal(b, &rec.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Trace-ID", "abc")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return NewShopClient(NewHTTPClient(srv.URL+"/", time.Second)), rec
}

func TestCreateProduct(t *testing.T) {
	c, rec := newServer(t, http.StatusOK,
		`{"success":true,"message":"","result":{"_id":"665f1c2b9d3e4a0012345678","name":"Lamp","price":9.5,"stock":2}}`)

	p, err := c.CreateProduct(context.Background(), map[string]any{"name": "Lamp", "price": 9.5})
	require.NoError(t, err)
	assert.Equal(t, "665f1c2b9d3e4a0012345678", p.ID.Hex())
	assert.Equal(t, 9.5, *p.Price)

	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/products", rec.path)
	assert.Equal(t, "application/json", rec.contentType)
	assert.Equal(t, "Lamp", rec.body["name"])
}

func TestListProductsSendsQuery(t *testing.T) {
	c, rec := newServer(t, http.StatusOK, `{"success":true,"message":"","result":[]}`)

	products, err := c.ListProducts(context.Background(), url.Values{"pricegte": {"10"}, "keywords": {"red,blue"}})
	require.NoError(t, err)
	assert.Empty(t, products)

	q, err := url.ParseQuery(rec.query)
	require.NoError(t, err)
	assert.Equal(t, "10", q.Get("pricegte"))
	assert.Equal(t, "red,blue", q.Get("keywords"))
}

func TestFailedEnvelopeIsAPIError(t *testing.T) {
	c, rec := newServer(t, http.StatusNotFound, `{"success":false,"message":"product not found"}`)

	err := c.DeleteProduct(context.Background(), "123")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "product not found", apiErr.Message)
	assert.Equal(t, http.MethodDelete, rec.method)
	assert.Equal(t, "/products/123", rec.path)
}

func TestUndecodableResponse(t *testing.T) {
	c, _ := newServer(t, http.StatusBadGateway, `<html>bad gateway</html>`)

	_, err := c.GetProduct(context.Background(), "665f1c2b9d3e4a0012345678")
	assert.ErrorContains(t, err, "status 502")
}

func TestBuildURL(t *testing.T) {
	c := NewHTTPClient("http://shop.local/", time.Second)

	got, err := c.buildURL("/products", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://shop.local/products", got)

	got, err = c.buildURL("products", url.Values{"a": {"1"}})
	require.NoError(t, err)
	assert.Equal(t, "http://shop.local/products?a=1", got)

	got, err = c.buildURL("https://other.local/x", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://other.local/x", got)
}

func TestResponseClassification(t *testing.T) {
	assert.True(t, (&Response{StatusCode: 204}).IsSuccess())
	assert.True(t, (&Response{StatusCode: 404}).IsClientError())
	assert.True(t, (&Response{StatusCode: 503}).IsServerError())
}
