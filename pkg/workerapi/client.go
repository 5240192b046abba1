// Package workerapi is the request proxy between the hosting shell and the
// worker's local HTTP API. Every operation is a single request-response
// exchange with a bounded timeout; there are no retries. Failures map onto
// a uniform *Error carrying the failure kind (transport, status or parse).
package workerapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Timeout budget per operation class.
const (
	readTimeout       = 5 * time.Second
	discoveryTimeout  = 10 * time.Second
	cameraEditTimeout = 10 * time.Second
	cameraTestTimeout = 15 * time.Second
)

// Client issues typed calls against the worker API. The base URL and the
// underlying HTTP client are fixed at construction; a Client is safe for
// concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient substitutes the HTTP client shared by all operations.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger used for per-call debug output.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the worker API rooted at baseURL,
// e.g. "http://localhost:8765".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the fixed base URL of the worker API.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do performs one request against the worker API and returns the raw
// response body. Transport and non-2xx status failures are mapped here;
// body decoding is left to the caller.
func (c *Client) do(ctx context.Context, method, path string, body []byte, timeout time.Duration) ([]byte, error) {
	op := method + " " + path
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, newTransportError(op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("worker API request failed", zap.String("op", op), zap.Error(err))
		return nil, newTransportError(op, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newTransportError(op, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.logger.Debug("worker API status error", zap.String("op", op), zap.Int("status", resp.StatusCode))
		return nil, newStatusError(op, resp.StatusCode)
	}
	return raw, nil
}

// opaque performs a request whose response body is forwarded verbatim.
// The body is still validated as JSON so that a garbled response surfaces
// as a parse failure rather than leaking downstream.
func (c *Client) opaque(ctx context.Context, method, path string, body []byte, timeout time.Duration) (json.RawMessage, error) {
	raw, err := c.do(ctx, method, path, body, timeout)
	if err != nil {
		return nil, err
	}
	var payload json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, newParseError(method+" "+path, err)
	}
	return payload, nil
}
