package sentinel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sentinelwatch/sentinel-go/pkg/workerapi"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestShell_CommandBoundary(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Worker.Command = "sleep"
	cfg.Worker.Args = []string{"30"}
	cfg.Worker.ProbeAddr = freeProbeAddr(t)
	cfg.Worker.GraceSecs = 0
	shell := NewShell(cfg, nil)
	defer shell.StopWorker()

	outcome, err := shell.StartWorker(context.Background())
	require.NoError(t, err)
	require.Equal(t, OutcomeStarted, outcome)
	require.True(t, shell.WorkerStatus().WorkerRunning)

	require.True(t, shell.StopWorker())
	require.False(t, shell.WorkerStatus().WorkerRunning)

	require.Equal(t, cfg.Worker.BaseURL, shell.API().BaseURL())
}

func TestShell_RunBroadcasts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"alerts": [], "config": {}, "timestamp": 1700000000.0}`))
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.Worker.BaseURL = server.URL
	cfg.Worker.Command = "true" // exits immediately, auto-start stays best-effort
	cfg.Worker.ProbeAddr = freeProbeAddr(t)
	cfg.Worker.GraceSecs = 0
	cfg.Broadcast.IntervalSecs = 1
	shell := NewShell(cfg, nil)
	defer shell.StopWorker()

	snapshots := make(chan workerapi.DashboardSnapshot, 16)
	shell.OnRealTimeUpdate(func(snapshot workerapi.DashboardSnapshot) {
		snapshots <- snapshot
	})

	ctx, cancel := context.WithCancel(context.Background())
	var g errgroup.Group
	g.Go(func() error {
		return shell.Run(ctx)
	})
	select {
	case snapshot := <-snapshots:
		require.Equal(t, 1700000000.0, snapshot.Timestamp)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a real-time update")
	}
	cancel()
	require.NoError(t, g.Wait())
}
