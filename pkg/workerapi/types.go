package workerapi

import (
	"encoding/json"

	"go.uber.org/zap/zapcore"
)

// DashboardSnapshot is one captured view of the worker's dashboard state.
// The alerts and configuration payloads are owned by the worker and
// forwarded verbatim; only the capture timestamp is interpreted here.
type DashboardSnapshot struct {
	Alerts    json.RawMessage `json:"alerts"`
	Config    json.RawMessage `json:"config"`
	Timestamp float64         `json:"timestamp"`
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (d DashboardSnapshot) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddFloat64("timestamp", d.Timestamp)
	enc.AddInt("alertsBytes", len(d.Alerts))
	enc.AddInt("configBytes", len(d.Config))
	return nil
}

// HealthReport is the worker's own liveness self-report from /api/health.
type HealthReport struct {
	Status         string  `json:"status"`
	Timestamp      float64 `json:"timestamp"`
	BackendRunning bool    `json:"backend_running"`
}

// Credentials carries optional camera stream credentials. They are sent as
// plaintext JSON fields, matching what the worker expects.
type Credentials struct {
	Username string
	Password string
}
