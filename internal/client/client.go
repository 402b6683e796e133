// Package client talks to the inventory service on behalf of the mapping editor.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/logging"
	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/models"
)

// ErrSaveFailed is wrapped by every failed SaveMapping call, whatever the cause
var ErrSaveFailed = errors.New("failed to save warehouse mapping")

// APIError is a non-2xx or success:false answer from the service
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("inventory service returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("inventory service returned status %d: %s", e.StatusCode, e.Message)
}

// Client is a thin HTTP client for the warehouse and mapping endpoints.
// It never retries and sets no timeout of its own; callers bound it with ctx.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sends the JWT as a Bearer token on every request
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a client rooted at the service base URL, e.g. https://inventory.internal
func New(baseURL string, opts ...Option) *Client {
	c := &Client{baseURL: strings.TrimRight(baseURL, "/"), http: &http.Client{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, endpoint string, requestBody, response interface{}) error {
	var body io.Reader
	if requestBody != nil {
		raw, err := json.Marshal(requestBody)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if requestBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("request was cancelled: %w", ctx.Err())
		}
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	var env envelope
	_ = json.Unmarshal(raw, &env)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: env.Error}
	}
	if env.Success != nil && !*env.Success {
		return &APIError{StatusCode: resp.StatusCode, Message: env.Error}
	}
	if response == nil {
		return nil
	}
	if err := json.Unmarshal(raw, response); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// ListWarehouses fetches the active warehouse catalog
func (c *Client) ListWarehouses(ctx context.Context) ([]models.Warehouse, error) {
	var resp struct {
		Warehouses []models.Warehouse `json:"warehouses"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/warehouses", nil, &resp); err != nil {
		logging.LogKV("error", "list warehouses failed", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	return resp.Warehouses, nil
}

// SaveMapping replaces the product's mapping with m in a single request
func (c *Client) SaveMapping(ctx context.Context, productID int, m models.WarehouseMapping) error {
	m = m.Clone()
	endpoint := fmt.Sprintf("/api/v1/products/%d/warehouse-mapping", productID)
	if err := c.do(ctx, http.MethodPut, endpoint, m, nil); err != nil {
		logging.LogKV("error", "save warehouse mapping failed", map[string]interface{}{
			"product_id":   productID,
			"mapping_type": string(m.Type),
			"error":        err.Error(),
		})
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	logging.LogKV("info", "warehouse mapping saved", map[string]interface{}{
		"product_id":   productID,
		"mapping_type": string(m.Type),
	})
	return nil
}
