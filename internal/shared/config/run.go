package config

import (
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/nemanja-m/scatter/internal/strategy"
	"github.com/nemanja-m/scatter/pkg/core"
	"github.com/nemanja-m/scatter/pkg/transform"
)

// RunConfig contains the global parameters of one scatter/transform/gather run.
type RunConfig struct {
	// Units is the total number of execution units, coordinator included.
	Units       int    `mapstructure:"units"`
	DatasetSize int    `mapstructure:"dataset_size"`
	Input       string `mapstructure:"input"`
	Strategy    string `mapstructure:"strategy"`
	Transform   string `mapstructure:"transform"`
	MaxUnits    int    `mapstructure:"max_units"`
	// MaxSegmentLength is the worker receive capacity; 0 derives it from
	// the dataset size and the number of workers.
	MaxSegmentLength  int           `mapstructure:"max_segment_length"`
	Timed             bool          `mapstructure:"timed"`
	CompletionTimeout time.Duration `mapstructure:"completion_timeout"`
}

func setRunDefaults(v *viper.Viper) {
	v.SetDefault("run.units", 5)
	v.SetDefault("run.dataset_size", 16)
	v.SetDefault("run.input", "")
	v.SetDefault("run.strategy", string(strategy.KindSynchronous))
	v.SetDefault("run.transform", transform.NameSquare)
	v.SetDefault("run.max_units", core.DefaultMaxUnits)
	v.SetDefault("run.max_segment_length", 0)
	v.SetDefault("run.timed", true)
	v.SetDefault("run.completion_timeout", time.Duration(0))
}

// Validate rejects parameters no run can be started with. Every failure is
// a core.ConfigurationError.
func (c RunConfig) Validate() error {
	if err := core.ValidateTopology(c.Units, c.MaxUnits); err != nil {
		return err
	}
	if c.Input == "" && c.DatasetSize < 0 {
		return core.ConfigErrorf("dataset size must be non-negative, got %d", c.DatasetSize)
	}
	if _, err := strategy.New(strategy.Kind(c.Strategy), strategy.Options{}); err != nil {
		return err
	}
	if _, err := transform.Get(c.Transform); err != nil {
		return core.ConfigErrorf("unknown transform %q (available: %v)", c.Transform, transform.List())
	}
	if c.MaxSegmentLength < 0 {
		return core.ConfigErrorf("max segment length must be non-negative, got %d", c.MaxSegmentLength)
	}
	if c.CompletionTimeout < 0 {
		return core.ConfigErrorf("completion timeout must be non-negative, got %s", c.CompletionTimeout)
	}
	return nil
}

// Plan turns the config into the parameters shared with every unit of a
// new run. datasetSize is the size of the dataset actually loaded.
func (c RunConfig) Plan(datasetSize int) core.Plan {
	maxSegment := c.MaxSegmentLength
	if maxSegment == 0 {
		maxSegment = core.MaxSegmentLength(datasetSize, c.Units-1)
	}
	return core.Plan{
		RunID:             uuid.New(),
		Units:             c.Units,
		Strategy:          c.Strategy,
		Transform:         c.Transform,
		MaxSegmentLength:  maxSegment,
		Timed:             c.Timed,
		CompletionTimeout: c.CompletionTimeout,
	}
}
