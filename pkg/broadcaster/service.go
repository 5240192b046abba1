// Package broadcaster pushes dashboard snapshots to the hosting UI on a
// fixed period. Each tick performs one dashboard fetch; successful
// snapshots are fanned out to subscribed listeners and failed ticks are
// dropped silently until the next tick.
package broadcaster

import (
	"context"
	"sync"
	"time"

	"github.com/einride/clock-go/pkg/clock"
	"github.com/sentinelwatch/sentinel-go/pkg/workerapi"
	"go.uber.org/zap"
)

const defaultInterval = 5 * time.Second

// Listener receives each successfully fetched snapshot.
type Listener func(workerapi.DashboardSnapshot)

// SnapshotSource provides dashboard snapshots. *workerapi.Client satisfies
// this.
type SnapshotSource interface {
	Dashboard(ctx context.Context) (*workerapi.DashboardSnapshot, error)
}

// Config contains the full set of dependencies for a broadcaster service.
type Config struct {
	Source   SnapshotSource
	Interval time.Duration // defaults to 5s
	Clock    clock.Clock   // defaults to the system clock
	Logger   *zap.Logger   // defaults to a nop logger
}

// Service is the periodic dashboard broadcaster.
type Service struct {
	source   SnapshotSource
	interval time.Duration
	clock    clock.Clock
	logger   *zap.Logger

	mu        sync.Mutex
	listeners []Listener
}

// New creates a broadcaster service from a config.
func New(cfg *Config) *Service {
	s := &Service{
		source:   cfg.Source,
		interval: cfg.Interval,
		clock:    cfg.Clock,
		logger:   cfg.Logger,
	}
	if s.interval <= 0 {
		s.interval = defaultInterval
	}
	if s.clock == nil {
		s.clock = clock.System()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Subscribe registers a listener for future snapshots. Listeners are
// invoked sequentially on the broadcaster's own goroutine.
func (s *Service) Subscribe(listener Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, listener)
}

// Run drives the broadcast loop until ctx is cancelled. It only ever
// returns nil: fetch failures are logged at debug level and skipped, never
// propagated.
func (s *Service) Run(ctx context.Context) error {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()
	ticks := ticker.C()
	ctxDone := ctx.Done()
	s.logger.Debug("running dashboard broadcaster")
	defer s.logger.Debug("stopped dashboard broadcaster")
	for {
		select {
		case <-ctxDone:
			return nil
		case <-ticks:
			s.broadcastOnce(ctx)
		}
	}
}

func (s *Service) broadcastOnce(ctx context.Context) {
	snapshot, err := s.source.Dashboard(ctx)
	if err != nil {
		s.logger.Debug("skipping broadcast tick", zap.Error(err))
		return
	}
	s.mu.Lock()
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()
	s.logger.Debug("broadcasting snapshot", zap.Object("snapshot", snapshot))
	for _, listener := range listeners {
		listener(*snapshot)
	}
}
