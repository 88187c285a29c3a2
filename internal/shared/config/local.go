package config

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// LocalConfig contains the configuration of an in-process run.
type LocalConfig struct {
	Run      RunConfig     `mapstructure:"run"`
	Logging  LoggingConfig `mapstructure:"logging"`
	Progress bool          `mapstructure:"progress"`
}

// LocalFlags declares the command-line flags understood by LoadLocal.
func LocalFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("local", pflag.ContinueOnError)
	fs.String("config", "", "path to config file")
	fs.Int("units", 5, "total execution units, coordinator included")
	fs.Int("size", 16, "dataset size when no input is given")
	fs.String("input", "", "glob of files holding the dataset")
	fs.String("strategy", "synchronous", "synchronous, overlapped or unconfirmed")
	fs.String("transform", "square", "elementwise transform")
	fs.Int("max-units", 16, "maximum execution units")
	fs.Int("max-segment", 0, "worker receive capacity (0 derives it)")
	fs.Bool("timed", true, "barrier and time the dispatch/collect sequence")
	fs.Duration("completion-timeout", 0, "bound on every completion wait (0 disables)")
	fs.Bool("progress", false, "show a collection progress bar")
	fs.String("log-level", "info", "debug, info, warn or error")
	fs.String("log-format", "text", "json or text")
	return fs
}

var localFlagKeys = map[string]string{
	"units":              "run.units",
	"size":               "run.dataset_size",
	"input":              "run.input",
	"strategy":           "run.strategy",
	"transform":          "run.transform",
	"max-units":          "run.max_units",
	"max-segment":        "run.max_segment_length",
	"timed":              "run.timed",
	"completion-timeout": "run.completion_timeout",
	"progress":           "progress",
	"log-level":          "logging.level",
	"log-format":         "logging.format",
}

// LoadLocal loads the local run configuration. Precedence, highest first:
// flags set on the command line, SCATTER_LOCAL_ environment variables, the
// config file (local.yaml unless --config is given), flag defaults.
func LoadLocal(fs *pflag.FlagSet) (*LocalConfig, error) {
	v := viper.New()

	setRunDefaults(v)
	setLoggingDefaults(v)
	v.SetDefault("logging.format", "text")
	v.SetDefault("progress", false)

	for name, key := range localFlagKeys {
		if f := fs.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("error binding flag %s: %w", name, err)
			}
		}
	}

	configPath, _ := fs.GetString("config")
	if err := read(v, configPath, "local", "SCATTER_LOCAL"); err != nil {
		return nil, err
	}

	var cfg LocalConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}
