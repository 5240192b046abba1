package workerapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/tidwall/gjson"
)

type thresholdRequest struct {
	ThresholdName string  `json:"threshold_name"`
	Value         float64 `json:"value"`
}

type acknowledgeRequest struct {
	AlertID string `json:"alert_id"`
}

// softSuccess extracts the worker's "success" verdict from a response
// body. The body itself must be valid JSON; only the field is soft — an
// absent or mistyped "success" reads as false rather than an error.
func softSuccess(op string, raw []byte) (bool, error) {
	var payload json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return false, newParseError(op, err)
	}
	return gjson.GetBytes(raw, "success").Bool(), nil
}

// Dashboard fetches the current dashboard snapshot.
func (c *Client) Dashboard(ctx context.Context) (*DashboardSnapshot, error) {
	raw, err := c.do(ctx, http.MethodGet, "/api/dashboard", nil, readTimeout)
	if err != nil {
		return nil, err
	}
	var snapshot DashboardSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, newParseError("GET /api/dashboard", err)
	}
	return &snapshot, nil
}

// UpdateThreshold asks the worker to change a detection threshold.
//
// The returned bool is the worker's own "success" verdict extracted from
// the response body; a missing or malformed field reads as false rather
// than an error. Transport and status failures remain hard errors.
func (c *Client) UpdateThreshold(ctx context.Context, name string, value float64) (bool, error) {
	body, err := json.Marshal(thresholdRequest{ThresholdName: name, Value: value})
	if err != nil {
		return false, newParseError("POST /api/threshold", err)
	}
	raw, err := c.do(ctx, http.MethodPost, "/api/threshold", body, readTimeout)
	if err != nil {
		return false, err
	}
	return softSuccess("POST /api/threshold", raw)
}

// AcknowledgeAlert marks an alert as acknowledged. The returned bool
// follows the same soft-success contract as UpdateThreshold.
func (c *Client) AcknowledgeAlert(ctx context.Context, alertID string) (bool, error) {
	body, err := json.Marshal(acknowledgeRequest{AlertID: alertID})
	if err != nil {
		return false, newParseError("POST /api/acknowledge", err)
	}
	raw, err := c.do(ctx, http.MethodPost, "/api/acknowledge", body, readTimeout)
	if err != nil {
		return false, err
	}
	return softSuccess("POST /api/acknowledge", raw)
}
