package sentinel

import (
	"context"

	"github.com/einride/clock-go/pkg/clock"
	"github.com/sentinelwatch/sentinel-go/pkg/broadcaster"
	"github.com/sentinelwatch/sentinel-go/pkg/workerapi"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// EventRealTimeUpdate is the name under which the hosting UI surfaces
// broadcast dashboard snapshots.
const EventRealTimeUpdate = "real-time-update"

// Shell wires the supervisor, the worker API client and the broadcaster
// into the command and event boundaries the hosting UI invokes.
type Shell struct {
	logger      *zap.Logger
	supervisor  *Supervisor
	api         *workerapi.Client
	broadcaster *broadcaster.Service
}

// NewShell assembles a shell from config. A nil cfg uses DefaultConfig and
// a nil logger disables logging.
func NewShell(cfg *Config, logger *zap.Logger) *Shell {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	systemClock := clock.System()
	api := workerapi.NewClient(cfg.Worker.BaseURL, workerapi.WithLogger(logger))
	supervisor := NewSupervisor(&SupervisorConfig{
		Command:     cfg.Worker.Command,
		Args:        cfg.Worker.Args,
		Directory:   cfg.Worker.Directory,
		ProbeAddr:   cfg.Worker.ProbeAddr,
		GracePeriod: cfg.Worker.GracePeriod(),
		Clock:       systemClock,
		Logger:      logger,
	})
	service := broadcaster.New(&broadcaster.Config{
		Source:   api,
		Interval: cfg.Broadcast.Interval(),
		Clock:    systemClock,
		Logger:   logger,
	})
	return &Shell{
		logger:      logger,
		supervisor:  supervisor,
		api:         api,
		broadcaster: service,
	}
}

// Run starts the shell's background work: a best-effort auto-start of the
// worker and the broadcast loop. It blocks until ctx is cancelled. An
// auto-start failure is logged and swallowed; the worker stays unstarted
// until the next explicit StartWorker.
func (s *Shell) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if _, err := s.supervisor.Start(ctx); err != nil {
			s.logger.Warn("auto-start worker", zap.Error(err))
		}
		s.logger.Debug("auto-start complete", zap.Object("status", s.supervisor.Status()))
		return nil
	})
	g.Go(func() error {
		return s.broadcaster.Run(ctx)
	})
	return g.Wait()
}

// StartWorker starts the worker if it is not already running.
func (s *Shell) StartWorker(ctx context.Context) (StartOutcome, error) {
	return s.supervisor.Start(ctx)
}

// StopWorker terminates the tracked worker, reporting whether one was
// present to stop.
func (s *Shell) StopWorker() bool {
	return s.supervisor.Stop()
}

// WorkerStatus reports the last-known worker state.
func (s *Shell) WorkerStatus() SystemStatus {
	return s.supervisor.Status()
}

// API exposes the proxy operations against the worker's HTTP API.
func (s *Shell) API() *workerapi.Client {
	return s.api
}

// OnRealTimeUpdate subscribes the hosting UI to broadcast snapshots; the
// host typically re-emits them under EventRealTimeUpdate.
func (s *Shell) OnRealTimeUpdate(listener broadcaster.Listener) {
	s.broadcaster.Subscribe(listener)
}
