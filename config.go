package sentinel

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the externalized configuration of the shell. All values have
// working defaults that reproduce the reference deployment, so a host may
// run entirely without a config file.
type Config struct {
	Worker    WorkerConfig    `yaml:"worker"`
	Broadcast BroadcastConfig `yaml:"broadcast"`
}

// WorkerConfig describes how to reach and, if necessary, launch the worker
// process.
type WorkerConfig struct {
	// BaseURL is the root of the worker's local HTTP API.
	BaseURL string `yaml:"base_url,omitempty"`
	// Command and Args launch the worker, typically an interpreter in
	// unbuffered mode plus the worker entry point.
	Command string   `yaml:"command,omitempty"`
	Args    []string `yaml:"args,omitempty"`
	// Directory is the working directory for the spawned worker. Empty
	// means the shell's own working directory.
	Directory string `yaml:"directory,omitempty"`
	// ProbeAddr is the TCP address checked before spawning; a listener
	// there is taken to be an already-running worker.
	ProbeAddr string `yaml:"probe_addr,omitempty"`
	// GraceSecs is the fixed post-spawn delay before a start attempt is
	// reported complete. It is a delay, not a readiness poll.
	GraceSecs int `yaml:"grace_secs,omitempty"`
}

// BroadcastConfig tunes the periodic dashboard push.
type BroadcastConfig struct {
	IntervalSecs int `yaml:"interval_secs,omitempty"`
}

// GracePeriod returns the post-spawn delay as a duration.
func (c WorkerConfig) GracePeriod() time.Duration {
	return time.Duration(c.GraceSecs) * time.Second
}

// Interval returns the broadcast period as a duration.
func (c BroadcastConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSecs) * time.Second
}

// DefaultConfig returns the configuration of the reference deployment: a
// Python worker next to the application, listening on localhost:8765.
func DefaultConfig() *Config {
	return &Config{
		Worker: WorkerConfig{
			BaseURL:   "http://localhost:8765",
			Command:   "../venv/bin/python3",
			Args:      []string{"-u", "../backend/api_server.py"},
			ProbeAddr: "127.0.0.1:8765",
			GraceSecs: 3,
		},
		Broadcast: BroadcastConfig{
			IntervalSecs: 5,
		},
	}
}

// LoadConfig reads a YAML config file and overlays it on the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load config %q", path)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %q", path)
	}
	return cfg, nil
}
