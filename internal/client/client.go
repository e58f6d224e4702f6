// Package client talks to the route API over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ukydev/walkroutes/internal/models"
)

// APIError is a non-2xx answer from the route API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("route api: status %d: %s", e.Status, e.Message)
}

// TokenSource returns the bearer token to attach, or "" for none.
type TokenSource func() string

// Client is an HTTP client for the route API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenSource
}

// New returns a client for the API at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// SetTokenSource makes the client authorize requests with tokens from src.
func (c *Client) SetTokenSource(src TokenSource) {
	c.token = src
}

// Ping calls the test endpoint.
func (c *Client) Ping(ctx context.Context) error {
	var out struct {
		Success bool `json:"success"`
	}
	if err := c.do(ctx, http.MethodGet, "/test", nil, &out); err != nil {
		return err
	}
	if !out.Success {
		return fmt.Errorf("route api: test endpoint did not report success")
	}
	return nil
}

// CreateRoute saves a route and returns the stored record.
func (c *Client) CreateRoute(ctx context.Context, in models.RouteInput) (*models.Route, error) {
	var out models.Route
	if err := c.do(ctx, http.MethodPost, "/routes", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListRoutes returns every saved route, newest first.
func (c *Client) ListRoutes(ctx context.Context) ([]models.Route, error) {
	var out []models.Route
	if err := c.do(ctx, http.MethodGet, "/routes", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteRoute removes a route by id.
func (c *Client) DeleteRoute(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/routes/"+url.PathEscape(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(resp.Body)
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
