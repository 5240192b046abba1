package workerapi

import (
	"context"
	"encoding/json"
	"net/http"
)

// Metrics fetches the worker's resource and performance metrics.
func (c *Client) Metrics(ctx context.Context) (json.RawMessage, error) {
	return c.opaque(ctx, http.MethodGet, "/api/metrics", nil, readTimeout)
}

// Health fetches the worker's liveness self-report.
func (c *Client) Health(ctx context.Context) (*HealthReport, error) {
	raw, err := c.do(ctx, http.MethodGet, "/api/health", nil, readTimeout)
	if err != nil {
		return nil, err
	}
	var report HealthReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, newParseError("GET /api/health", err)
	}
	return &report, nil
}
