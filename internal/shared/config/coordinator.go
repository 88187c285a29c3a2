package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// CoordinatorConfig contains all configuration for the coordinator process.
type CoordinatorConfig struct {
	GRPC    GRPCConfig    `mapstructure:"grpc"`
	REST    RESTConfig    `mapstructure:"rest"`
	Run     RunConfig     `mapstructure:"run"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// GRPCConfig contains the coordinator's fabric server configuration.
type GRPCConfig struct {
	Addr             string        `mapstructure:"addr"`
	KeepaliveMinTime time.Duration `mapstructure:"keepalive_min_time"`
	// JoinTimeout bounds how long the coordinator waits for every worker
	// to connect.
	JoinTimeout time.Duration `mapstructure:"join_timeout"`
}

// RESTConfig contains the run inspection API configuration. The API is
// served only when Addr is set.
type RESTConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	// Linger keeps the process serving the API after the run finished,
	// until it is interrupted.
	Linger bool `mapstructure:"linger"`
}

// LoadCoordinator loads the coordinator configuration from the given path.
// If configPath is empty, it looks for coordinator.yaml in the config/ directory.
// Environment variables with SCATTER_COORDINATOR_ prefix override config file values.
func LoadCoordinator(configPath string) (*CoordinatorConfig, error) {
	v := viper.New()

	v.SetDefault("grpc.addr", ":9090")
	v.SetDefault("grpc.keepalive_min_time", 30*time.Second)
	v.SetDefault("grpc.join_timeout", 60*time.Second)
	v.SetDefault("rest.addr", "")
	v.SetDefault("rest.read_timeout", 15*time.Second)
	v.SetDefault("rest.write_timeout", 15*time.Second)
	v.SetDefault("rest.idle_timeout", 60*time.Second)
	v.SetDefault("rest.linger", false)
	setRunDefaults(v)
	setLoggingDefaults(v)

	if err := read(v, configPath, "coordinator", "SCATTER_COORDINATOR"); err != nil {
		return nil, err
	}

	var cfg CoordinatorConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}
