package local

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nemanja-m/scatter/internal/shared/config"
	"github.com/nemanja-m/scatter/pkg/core"
	"github.com/nemanja-m/scatter/pkg/dataset"
)

type mockLogger struct{}

func (m *mockLogger) Debug(msg string, args ...any) {}
func (m *mockLogger) Info(msg string, args ...any)  {}
func (m *mockLogger) Warn(msg string, args ...any)  {}
func (m *mockLogger) Error(msg string, args ...any) {}
func (m *mockLogger) Fatal(msg string, args ...any) {}

type countingObserver struct {
	mu         sync.Mutex
	dispatched int
	collected  []int
}

func (o *countingObserver) SegmentDispatched(core.Segment) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dispatched++
}

func (o *countingObserver) SegmentCollected(seg core.Segment) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.collected = append(o.collected, seg.Worker)
}

func runConfig(kind string, units int) config.RunConfig {
	return config.RunConfig{
		Units:             units,
		Strategy:          kind,
		Transform:         "square",
		MaxUnits:          core.DefaultMaxUnits,
		Timed:             true,
		CompletionTimeout: 5 * time.Second,
	}
}

func squares(n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = int64(i+1) * int64(i+1)
	}
	return out
}

func TestEngine_Run(t *testing.T) {
	for _, kind := range []string{"synchronous", "overlapped"} {
		t.Run(kind, func(t *testing.T) {
			observer := &countingObserver{}
			engine, err := NewEngine(runConfig(kind, 5), &mockLogger{}, WithObserver(observer))
			require.NoError(t, err)

			res, err := engine.Run(context.Background(), dataset.Sequence(16))
			require.NoError(t, err)

			assert.Equal(t, squares(16), res.Report.Result)
			assert.True(t, res.Report.Timed)
			require.Len(t, res.Workers, 4)
			for i, w := range res.Workers {
				assert.Equal(t, i+1, w.Rank)
				assert.Equal(t, 4, w.Length)
			}
			assert.Equal(t, 4, observer.dispatched)
			assert.ElementsMatch(t, []int{1, 2, 3, 4}, observer.collected)
		})
	}
}

func TestEngine_Run_UnevenSegments(t *testing.T) {
	cfg := runConfig("overlapped", 4)
	cfg.Timed = false
	engine, err := NewEngine(cfg, &mockLogger{})
	require.NoError(t, err)

	res, err := engine.Run(context.Background(), dataset.Sequence(16))
	require.NoError(t, err)

	assert.Equal(t, squares(16), res.Report.Result)
	lengths := []int{res.Workers[0].Length, res.Workers[1].Length, res.Workers[2].Length}
	assert.Equal(t, []int{6, 5, 5}, lengths)
}

func TestEngine_Run_EmptyDataset(t *testing.T) {
	engine, err := NewEngine(runConfig("synchronous", 3), &mockLogger{})
	require.NoError(t, err)

	res, err := engine.Run(context.Background(), []int64{})
	require.NoError(t, err)
	assert.Empty(t, res.Report.Result)
}

func TestEngine_Run_Unconfirmed(t *testing.T) {
	cfg := runConfig("unconfirmed", 5)
	cfg.Timed = false
	engine, err := NewEngine(cfg, &mockLogger{})
	require.NoError(t, err)

	res, err := engine.Run(context.Background(), dataset.Sequence(16))
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrRaceCondition))
	require.NotNil(t, res)
	require.NotNil(t, res.Report)

	var defect *core.RaceConditionDefect
	require.True(t, errors.As(err, &defect))
	ranks := map[int]bool{}
	for _, h := range defect.Hazards {
		ranks[h.Rank] = true
	}
	assert.True(t, ranks[0], "coordinator hazards must be reported")
	assert.True(t, len(ranks) > 1, "worker hazards must be reported")
}

func TestEngine_Run_MaxSegmentTooSmall(t *testing.T) {
	cfg := runConfig("synchronous", 3)
	cfg.MaxSegmentLength = 2
	engine, err := NewEngine(cfg, &mockLogger{})
	require.NoError(t, err)

	_, err = engine.Run(context.Background(), dataset.Sequence(16))
	assert.True(t, errors.Is(err, core.ErrConfiguration), "got %v", err)
}

func TestEngine_Run_Canceled(t *testing.T) {
	engine, err := NewEngine(runConfig("synchronous", 3), &mockLogger{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = engine.Run(ctx, dataset.Sequence(8))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.RunConfig)
	}{
		{"single unit", func(c *config.RunConfig) { c.Units = 1 }},
		{"too many units", func(c *config.RunConfig) { c.Units = 17 }},
		{"unknown strategy", func(c *config.RunConfig) { c.Strategy = "eager" }},
		{"unknown transform", func(c *config.RunConfig) { c.Transform = "sqrt" }},
		{"negative timeout", func(c *config.RunConfig) { c.CompletionTimeout = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := runConfig("synchronous", 5)
			tt.modify(&cfg)

			_, err := NewEngine(cfg, &mockLogger{})
			assert.True(t, errors.Is(err, core.ErrConfiguration), "got %v", err)
		})
	}
}
