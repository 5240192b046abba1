package sentinel

import (
	"go.uber.org/zap/zapcore"
)

// StartOutcome reports how a start attempt concluded when no error
// occurred.
type StartOutcome uint8

const (
	// OutcomeUnknown is the zero value, reported alongside errors.
	OutcomeUnknown StartOutcome = iota
	// OutcomeStarted means a new worker process was spawned.
	OutcomeStarted
	// OutcomeAlreadyRunning means a live worker was found, either in the
	// supervisor's own slot or detected on the worker address, and no
	// process was spawned.
	OutcomeAlreadyRunning
)

func (o StartOutcome) String() string {
	switch o {
	case OutcomeStarted:
		return "Started"
	case OutcomeAlreadyRunning:
		return "AlreadyRunning"
	default:
		return "Unknown"
	}
}

// SystemStatus is a point-in-time view of the supervisor's last-known
// worker state. It reflects the tracked slot only; no liveness probe is
// performed to produce it.
type SystemStatus struct {
	WorkerRunning bool    `json:"worker_running"`
	WorkerPID     int     `json:"worker_pid,omitempty"`
	LastUpdate    float64 `json:"last_update"` // seconds since epoch
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (s SystemStatus) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddBool("workerRunning", s.WorkerRunning)
	if s.WorkerRunning {
		enc.AddInt("workerPID", s.WorkerPID)
	}
	enc.AddFloat64("lastUpdate", s.LastUpdate)
	return nil
}
