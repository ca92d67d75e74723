// Package config loads buffer pool / replacer / disk scheduler tuning
// parameters from a YAML file or the environment.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config bundles the construction parameters named in the external
// interfaces section of the spec: pool_size, replacer_k, num_workers,
// plus the disk scheduler's ingress queue capacity and the log level.
type Config struct {
	PoolSize          int    `mapstructure:"pool_size"`
	ReplacerK         int    `mapstructure:"replacer_k"`
	NumWorkers        int    `mapstructure:"num_workers"`
	DiskQueueCapacity int    `mapstructure:"disk_queue_capacity"`
	LogLevel          string `mapstructure:"log_level"`
}

// Default returns the configuration used when no file is supplied:
// a small pool, classical LRU-2, four disk shards.
func Default() Config {
	return Config{
		PoolSize:          64,
		ReplacerK:         2,
		NumWorkers:        4,
		DiskQueueCapacity: 256,
		LogLevel:          "info",
	}
}

// Load reads a YAML configuration file at path, falling back to
// Default() for any field the file doesn't set, and allowing
// PAGECACHE_-prefixed environment variables to override either.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("PAGECACHE")
	v.AutomaticEnv()

	v.SetDefault("pool_size", cfg.PoolSize)
	v.SetDefault("replacer_k", cfg.ReplacerK)
	v.SetDefault("num_workers", cfg.NumWorkers)
	v.SetDefault("disk_queue_capacity", cfg.DiskQueueCapacity)
	v.SetDefault("log_level", cfg.LogLevel)

	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the invariants §6 places on construction parameters.
func (c Config) Validate() error {
	if c.PoolSize <= 0 {
		return fmt.Errorf("pool_size must be > 0, got %d", c.PoolSize)
	}
	if c.ReplacerK < 1 {
		return fmt.Errorf("replacer_k must be >= 1, got %d", c.ReplacerK)
	}
	if c.NumWorkers < 1 {
		return fmt.Errorf("num_workers must be >= 1, got %d", c.NumWorkers)
	}
	if c.DiskQueueCapacity < 1 {
		return fmt.Errorf("disk_queue_capacity must be >= 1, got %d", c.DiskQueueCapacity)
	}
	return nil
}
