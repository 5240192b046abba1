package sentinel

import (
	"context"
	"net"
	"time"

	"github.com/sentinelwatch/sentinel-go/pkg/workerapi"
)

// Detector is a strategy that decides whether a worker is already serving
// outside the supervisor's own tracking. It must be safe for concurrent
// use.
type Detector interface {
	// Alive returns true if a worker is detected.
	Alive(ctx context.Context) bool
	// Describe returns a human-readable description of the detection
	// method.
	Describe() string
}

// NewPortDetector detects a worker by dialing its TCP address. Any
// listener on the address counts, even an unrelated process; hosts that
// need certainty should use NewHealthDetector instead.
func NewPortDetector(addr string) Detector {
	return &portDetector{addr: addr, timeout: time.Second}
}

type portDetector struct {
	addr    string
	timeout time.Duration
}

func (d *portDetector) Alive(ctx context.Context) bool {
	dialer := net.Dialer{Timeout: d.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", d.addr)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

func (d *portDetector) Describe() string {
	return "tcp listener on " + d.addr
}

// NewHealthDetector detects a worker by asking its /api/health endpoint.
// Unlike the port probe, this only reports a worker that actually speaks
// the worker API.
func NewHealthDetector(client *workerapi.Client) Detector {
	return &healthDetector{client: client}
}

type healthDetector struct {
	client *workerapi.Client
}

func (d *healthDetector) Alive(ctx context.Context) bool {
	report, err := d.client.Health(ctx)
	return err == nil && report.Status == "healthy"
}

func (d *healthDetector) Describe() string {
	return "health handshake with " + d.client.BaseURL()
}
