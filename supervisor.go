// Package sentinel supervises the lifecycle of one external worker process
// and exposes the command and event boundaries a hosting desktop UI talks
// to. The worker's own logic lives behind its local HTTP API; this package
// only starts it, stops it and reports on it.
package sentinel

import (
	"context"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/einride/clock-go/pkg/clock"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// SupervisorConfig contains the full set of dependencies for a supervisor.
type SupervisorConfig struct {
	// Command and Args spawn the worker process.
	Command string
	Args    []string
	// Directory is the working directory for the spawned worker; empty
	// means the current directory.
	Directory string
	// ProbeAddr is the TCP address checked before spawning when no
	// Detector is given.
	ProbeAddr string
	// GracePeriod is the fixed delay after a successful spawn before
	// Start returns. It is not a readiness poll.
	GracePeriod time.Duration
	Detector    Detector    // defaults to NewPortDetector(ProbeAddr)
	Clock       clock.Clock // defaults to the system clock
	Logger      *zap.Logger // defaults to a nop logger
}

// worker is one tracked child process. done is closed by the monitor
// goroutine once the process has been reaped.
type worker struct {
	cmd  *exec.Cmd
	pid  int
	done chan struct{}
}

// exited is a non-blocking check of whether the process has been reaped.
func (w *worker) exited() bool {
	select {
	case <-w.done:
		return true
	default:
		return false
	}
}

// Supervisor owns the single shared worker slot: zero or one tracked child
// process, guarded by one mutex. All methods are safe for concurrent use;
// the lock is never held across spawning, probing or waiting.
type Supervisor struct {
	cfg      *SupervisorConfig
	detector Detector
	clock    clock.Clock
	logger   *zap.Logger

	mu   sync.Mutex
	slot *worker
}

// NewSupervisor creates a supervisor from a config.
func NewSupervisor(cfg *SupervisorConfig) *Supervisor {
	s := &Supervisor{
		cfg:      cfg,
		detector: cfg.Detector,
		clock:    cfg.Clock,
		logger:   cfg.Logger,
	}
	if s.detector == nil {
		s.detector = NewPortDetector(cfg.ProbeAddr)
	}
	if s.clock == nil {
		s.clock = clock.System()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Start is an idempotent start attempt. A live tracked worker, or a worker
// detected on the probe address, short-circuits to OutcomeAlreadyRunning
// without spawning. Otherwise a new process is spawned with inherited
// stdout/stderr and Start returns OutcomeStarted after the configured
// grace period.
func (s *Supervisor) Start(ctx context.Context) (StartOutcome, error) {
	s.mu.Lock()
	if s.slot != nil {
		if s.slot.exited() {
			s.logger.Debug("clearing exited worker", zap.Int("pid", s.slot.pid))
			s.slot = nil
		} else {
			pid := s.slot.pid
			s.mu.Unlock()
			s.logger.Info("worker already running", zap.Int("pid", pid))
			return OutcomeAlreadyRunning, nil
		}
	}
	s.mu.Unlock()

	// A worker may be serving outside our tracking, e.g. started by hand
	// during development. Probing happens outside the lock so status and
	// stop calls are never stalled behind it.
	if s.detector.Alive(ctx) {
		s.logger.Info("worker detected outside supervision", zap.String("via", s.detector.Describe()))
		return OutcomeAlreadyRunning, nil
	}

	cmd := exec.Command(s.cfg.Command, s.cfg.Args...)
	cmd.Dir = s.cfg.Directory
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		dir := s.cfg.Directory
		if dir == "" {
			dir, _ = os.Getwd()
		}
		return OutcomeUnknown, errors.Wrapf(err, "start worker %q (working directory %q)", s.cfg.Command, dir)
	}
	w := &worker{cmd: cmd, pid: cmd.Process.Pid, done: make(chan struct{})}
	go func() {
		err := cmd.Wait()
		close(w.done)
		if err != nil {
			s.logger.Warn("worker exited", zap.Int("pid", w.pid), zap.Error(err))
		} else {
			s.logger.Info("worker exited", zap.Int("pid", w.pid))
		}
	}()

	s.mu.Lock()
	s.slot = w
	s.mu.Unlock()
	s.logger.Info("worker started", zap.Int("pid", w.pid), zap.String("command", s.cfg.Command))

	// Fixed delay so the worker can finish initializing before callers
	// begin issuing API requests. Deliberately not a readiness poll.
	// clock-go has no one-shot timer, so the delay is a real sleep;
	// tests keep GracePeriod small instead of faking it.
	select {
	case <-ctx.Done():
		return OutcomeStarted, ctx.Err()
	case <-time.After(s.cfg.GracePeriod):
	}
	return OutcomeStarted, nil
}

// Stop takes ownership of any tracked worker, terminates it and waits for
// it to be reaped. Termination is best-effort: an OS-level kill failure is
// logged, not returned. The result reports whether a worker was present.
func (s *Supervisor) Stop() bool {
	s.mu.Lock()
	w := s.slot
	s.slot = nil
	s.mu.Unlock()
	if w == nil {
		return false
	}
	if !w.exited() {
		if err := w.cmd.Process.Kill(); err != nil {
			s.logger.Warn("kill worker", zap.Int("pid", w.pid), zap.Error(err))
		}
	}
	<-w.done
	s.logger.Info("worker stopped", zap.Int("pid", w.pid))
	return true
}

// Status reports the last-known worker state. It is a fast local read of
// the slot; unlike Start it does not probe whether the process is still
// alive.
func (s *Supervisor) Status() SystemStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := SystemStatus{
		LastUpdate: float64(s.clock.Now().UnixNano()) / float64(time.Second),
	}
	if s.slot != nil {
		status.WorkerRunning = true
		status.WorkerPID = s.slot.pid
	}
	return status
}
