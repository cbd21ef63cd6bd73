// Package config provides the engine configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the config file inside the data directory.
const ConfigFileName = "tpcc.yaml"

// Config holds the tunables of the engine. The CLI's positional arguments
// (warehouse count, memory budget, mode) always win over the file.
type Config struct {
	// Storage settings.
	Storage StorageConfig `yaml:"storage"`

	// Benchmark settings.
	Benchmark BenchmarkConfig `yaml:"benchmark"`

	// Logging settings.
	Logging LoggingConfig `yaml:"logging"`
}

// StorageConfig holds index and cold-tier settings.
type StorageConfig struct {
	// DataDir is where block files, models and CSV dumps land.
	DataDir string `yaml:"data_dir"`

	// BlockSize is the cold-tier block size in bytes.
	BlockSize int `yaml:"block_size"`

	// InternalFanout and LeafFanout size the B+ tree nodes.
	InternalFanout int `yaml:"internal_fanout"`
	LeafFanout     int `yaml:"leaf_fanout"`
}

// BenchmarkConfig holds the run-loop settings.
type BenchmarkConfig struct {
	// Transactions is the total number of transactions to run.
	Transactions int `yaml:"transactions"`

	// ReportInterval is how many transactions pass between stat lines.
	ReportInterval int `yaml:"report_interval"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			DataDir:        ".",
			BlockSize:      16 * 1024,
			InternalFanout: 8,
			LeafFanout:     8,
		},
		Benchmark: BenchmarkConfig{
			Transactions:   1000000,
			ReportInterval: 50000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// ConfigPath returns the config file path for a data directory.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, ConfigFileName)
}

// Load reads the config from dataDir, falling back to defaults when no
// file exists.
func Load(dataDir string) (*Config, error) {
	configPath := ConfigPath(dataDir)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.Storage.DataDir = dataDir
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	cfg.Storage.DataDir = dataDir
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to path.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate rejects unusable settings.
func (c *Config) Validate() error {
	if c.Storage.BlockSize <= 0 {
		return fmt.Errorf("block_size must be positive, got %d", c.Storage.BlockSize)
	}
	if c.Storage.InternalFanout < 2 || c.Storage.LeafFanout < 2 {
		return fmt.Errorf("tree fanouts must be at least 2, got %d/%d",
			c.Storage.InternalFanout, c.Storage.LeafFanout)
	}
	if c.Benchmark.Transactions <= 0 {
		return fmt.Errorf("transactions must be positive, got %d", c.Benchmark.Transactions)
	}
	if c.Benchmark.ReportInterval <= 0 {
		return fmt.Errorf("report_interval must be positive, got %d", c.Benchmark.ReportInterval)
	}
	return nil
}
