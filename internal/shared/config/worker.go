package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// WorkerConfig contains all configuration for a worker process.
type WorkerConfig struct {
	// Rank is the worker's unit index, 1..units-1.
	Rank        int                   `mapstructure:"rank"`
	Coordinator CoordinatorConnConfig `mapstructure:"coordinator"`
	Logging     LoggingConfig         `mapstructure:"logging"`
}

// CoordinatorConnConfig contains coordinator connection configuration.
type CoordinatorConnConfig struct {
	Addr        string           `mapstructure:"addr"`
	DialTimeout time.Duration    `mapstructure:"dial_timeout"`
	GRPC        WorkerGRPCConfig `mapstructure:"grpc"`
}

// WorkerGRPCConfig contains worker gRPC client configuration.
type WorkerGRPCConfig struct {
	KeepaliveTime    time.Duration `mapstructure:"keepalive_time"`
	KeepaliveTimeout time.Duration `mapstructure:"keepalive_timeout"`
}

// LoadWorker loads the worker configuration from the given path.
// If configPath is empty, it looks for worker.yaml in the config/ directory.
// Environment variables with SCATTER_WORKER_ prefix override config file values.
func LoadWorker(configPath string) (*WorkerConfig, error) {
	v := viper.New()

	v.SetDefault("rank", 1)
	v.SetDefault("coordinator.addr", "localhost:9090")
	v.SetDefault("coordinator.dial_timeout", 30*time.Second)
	v.SetDefault("coordinator.grpc.keepalive_time", 30*time.Second)
	v.SetDefault("coordinator.grpc.keepalive_timeout", 5*time.Second)
	setLoggingDefaults(v)

	if err := read(v, configPath, "worker", "SCATTER_WORKER"); err != nil {
		return nil, err
	}

	var cfg WorkerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}
