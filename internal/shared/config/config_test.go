package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nemanja-m/scatter/pkg/core"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCoordinator_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadCoordinator("")
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.GRPC.Addr)
	assert.Equal(t, 60*time.Second, cfg.GRPC.JoinTimeout)
	assert.Empty(t, cfg.REST.Addr)
	assert.Equal(t, 5, cfg.Run.Units)
	assert.Equal(t, 16, cfg.Run.DatasetSize)
	assert.Equal(t, "synchronous", cfg.Run.Strategy)
	assert.Equal(t, "square", cfg.Run.Transform)
	assert.True(t, cfg.Run.Timed)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Run.Validate())
}

func TestLoadCoordinator_FileAndEnv(t *testing.T) {
	path := writeConfig(t, "coordinator.yaml", `
grpc:
  addr: ":7000"
rest:
  addr: ":8080"
  linger: true
run:
  units: 4
  strategy: overlapped
  completion_timeout: 3s
logging:
  level: debug
`)
	t.Setenv("SCATTER_COORDINATOR_RUN_UNITS", "3")

	cfg, err := LoadCoordinator(path)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.GRPC.Addr)
	assert.Equal(t, ":8080", cfg.REST.Addr)
	assert.True(t, cfg.REST.Linger)
	assert.Equal(t, 3, cfg.Run.Units, "environment overrides the file")
	assert.Equal(t, "overlapped", cfg.Run.Strategy)
	assert.Equal(t, 3*time.Second, cfg.Run.CompletionTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadCoordinator_MissingExplicitFile(t *testing.T) {
	_, err := LoadCoordinator(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadWorker(t *testing.T) {
	path := writeConfig(t, "worker.yaml", `
rank: 2
coordinator:
  addr: "coordinator:9090"
`)
	t.Setenv("SCATTER_WORKER_COORDINATOR_DIAL_TIMEOUT", "2s")

	cfg, err := LoadWorker(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Rank)
	assert.Equal(t, "coordinator:9090", cfg.Coordinator.Addr)
	assert.Equal(t, 2*time.Second, cfg.Coordinator.DialTimeout)
	assert.Equal(t, 30*time.Second, cfg.Coordinator.GRPC.KeepaliveTime)
}

func TestLoadLocal_Precedence(t *testing.T) {
	path := writeConfig(t, "local.yaml", `
run:
  units: 4
  strategy: overlapped
  transform: double
progress: true
`)
	t.Setenv("SCATTER_LOCAL_RUN_TRANSFORM", "square")

	fs := LocalFlags()
	require.NoError(t, fs.Parse([]string{"--config", path, "--units", "3", "--timed=false"}))

	cfg, err := LoadLocal(fs)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Run.Units, "flags override the file")
	assert.Equal(t, "overlapped", cfg.Run.Strategy)
	assert.Equal(t, "square", cfg.Run.Transform, "environment overrides the file")
	assert.False(t, cfg.Run.Timed)
	assert.True(t, cfg.Progress)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoadLocal_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	fs := LocalFlags()
	require.NoError(t, fs.Parse(nil))

	cfg, err := LoadLocal(fs)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Run.Units)
	assert.Equal(t, 16, cfg.Run.DatasetSize)
	assert.Equal(t, core.DefaultMaxUnits, cfg.Run.MaxUnits)
	assert.False(t, cfg.Progress)
}

func validRun() RunConfig {
	return RunConfig{
		Units:       5,
		DatasetSize: 16,
		Strategy:    "synchronous",
		Transform:   "square",
		MaxUnits:    core.DefaultMaxUnits,
	}
}

func TestRunConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*RunConfig)
	}{
		{"one unit", func(c *RunConfig) { c.Units = 1 }},
		{"above max units", func(c *RunConfig) { c.Units = 20 }},
		{"negative size", func(c *RunConfig) { c.DatasetSize = -1 }},
		{"unknown strategy", func(c *RunConfig) { c.Strategy = "eager" }},
		{"unknown transform", func(c *RunConfig) { c.Transform = "sqrt" }},
		{"negative max segment", func(c *RunConfig) { c.MaxSegmentLength = -1 }},
		{"negative timeout", func(c *RunConfig) { c.CompletionTimeout = -time.Second }},
	}

	require.NoError(t, validRun().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validRun()
			tt.modify(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrConfiguration), "got %v", err)
		})
	}
}

func TestRunConfig_Plan(t *testing.T) {
	cfg := validRun()
	cfg.Units = 4
	cfg.Timed = true

	plan := cfg.Plan(16)
	assert.Equal(t, 3, plan.Workers())
	assert.Equal(t, 6, plan.MaxSegmentLength, "derived from the largest segment")
	assert.True(t, plan.Timed)
	assert.NotEqual(t, plan.RunID, cfg.Plan(16).RunID, "every plan gets a fresh run ID")

	cfg.MaxSegmentLength = 10
	assert.Equal(t, 10, cfg.Plan(16).MaxSegmentLength)
}
