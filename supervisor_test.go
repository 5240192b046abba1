package sentinel

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/einride/clock-go/pkg/clock"
	"github.com/stretchr/testify/require"
)

type mockClock struct {
	clock.Clock
	now time.Time
}

func (m *mockClock) Now() time.Time {
	return m.now
}

// freeProbeAddr returns a localhost address nothing is listening on.
func freeProbeAddr(t *testing.T) string {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())
	return addr
}

func newTestSupervisor(t *testing.T, command string, args ...string) *Supervisor {
	t.Helper()
	return NewSupervisor(&SupervisorConfig{
		Command:     command,
		Args:        args,
		ProbeAddr:   freeProbeAddr(t),
		GracePeriod: 10 * time.Millisecond,
	})
}

func TestSupervisor_StartIdempotent(t *testing.T) {
	s := newTestSupervisor(t, "sleep", "30")
	defer s.Stop()
	outcome, err := s.Start(context.Background())
	require.NoError(t, err)
	require.Equal(t, OutcomeStarted, outcome)
	pid := s.Status().WorkerPID
	require.NotZero(t, pid)
	// A second start with no intervening stop spawns nothing.
	outcome, err = s.Start(context.Background())
	require.NoError(t, err)
	require.Equal(t, OutcomeAlreadyRunning, outcome)
	require.Equal(t, pid, s.Status().WorkerPID)
}

func TestSupervisor_DetectsExternalListener(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()
	// The command does not exist: any spawn attempt would fail loudly.
	s := NewSupervisor(&SupervisorConfig{
		Command:     "no-such-sentinel-worker",
		ProbeAddr:   listener.Addr().String(),
		GracePeriod: 10 * time.Millisecond,
	})
	outcome, err := s.Start(context.Background())
	require.NoError(t, err)
	require.Equal(t, OutcomeAlreadyRunning, outcome)
	// The externally detected worker is not tracked in the slot.
	require.False(t, s.Status().WorkerRunning)
}

func TestSupervisor_StopWithoutStart(t *testing.T) {
	s := newTestSupervisor(t, "sleep", "30")
	require.False(t, s.Stop())
}

func TestSupervisor_StopAfterStart(t *testing.T) {
	s := newTestSupervisor(t, "sleep", "30")
	_, err := s.Start(context.Background())
	require.NoError(t, err)
	require.True(t, s.Stop())
	status := s.Status()
	require.False(t, status.WorkerRunning)
	require.Zero(t, status.WorkerPID)
	// Nothing left to stop.
	require.False(t, s.Stop())
}

func TestSupervisor_SpawnFailure(t *testing.T) {
	dir := t.TempDir()
	s := NewSupervisor(&SupervisorConfig{
		Command:     "no-such-sentinel-worker",
		Directory:   dir,
		ProbeAddr:   freeProbeAddr(t),
		GracePeriod: 10 * time.Millisecond,
	})
	outcome, err := s.Start(context.Background())
	require.Error(t, err)
	require.Equal(t, OutcomeUnknown, outcome)
	require.Contains(t, err.Error(), dir)
	require.Contains(t, err.Error(), "no-such-sentinel-worker")
	require.False(t, s.Status().WorkerRunning)
}

func TestSupervisor_RestartAfterExit(t *testing.T) {
	s := newTestSupervisor(t, "true")
	defer s.Stop()
	outcome, err := s.Start(context.Background())
	require.NoError(t, err)
	require.Equal(t, OutcomeStarted, outcome)
	// Once the first worker is reaped, a start attempt clears the slot
	// and spawns a fresh process.
	require.Eventually(t, func() bool {
		outcome, err := s.Start(context.Background())
		return err == nil && outcome == OutcomeStarted
	}, 5*time.Second, 20*time.Millisecond)
}

func TestSupervisor_StatusTimestamp(t *testing.T) {
	s := newTestSupervisor(t, "sleep", "30")
	s.clock = &mockClock{now: time.Unix(1700000000, 500000000)}
	status := s.Status()
	require.False(t, status.WorkerRunning)
	require.Equal(t, 1700000000.5, status.LastUpdate)
}
