// Package config loads pool configuration from a YAML file via viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/arvindn/pagepool/internal/bufferpool"
)

// PoolConfig is the on-disk shape of a pool configuration file.
type PoolConfig struct {
	Pool struct {
		DataFile string `mapstructure:"data_file"`
		Capacity int    `mapstructure:"capacity"`
		Strategy string `mapstructure:"strategy"`
	} `mapstructure:"pool"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// LoadConfig reads and unmarshals a YAML pool configuration from path.
func LoadConfig(path string) (*PoolConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("pool.capacity", 16)
	v.SetDefault("pool.strategy", "fifo")
	v.SetDefault("log.level", "info")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg PoolConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// ParseStrategy maps a config/flag strategy name to a
// bufferpool.Strategy. "lru-k" (or "lruk") maps to bufferpool.LRUK,
// which the pool runs as plain LRU.
func ParseStrategy(name string) (bufferpool.Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "fifo":
		return bufferpool.FIFO, nil
	case "lru":
		return bufferpool.LRU, nil
	case "lru-k", "lruk":
		return bufferpool.LRUK, nil
	case "clock":
		return bufferpool.CLOCK, nil
	default:
		return 0, fmt.Errorf("config: unknown replacement strategy %q", name)
	}
}
