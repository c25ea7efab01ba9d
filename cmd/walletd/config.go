// config.go - Configuration management for the wallet daemon
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the daemon configuration
type Config struct {
	// Server
	ListenAddr   string `yaml:"listen_addr"`
	ReadTimeout  int    `yaml:"read_timeout_seconds"`
	WriteTimeout int    `yaml:"write_timeout_seconds"`

	// Logging
	LogLevel      string `yaml:"log_level"`
	LogFile       string `yaml:"log_file"`
	LogMaxSizeMB  int    `yaml:"log_max_size_mb"`
	LogMaxAgeDays int    `yaml:"log_max_age_days"`

	// Diagnostics is where skipped notes are reported: stdout, stderr or off.
	Diagnostics string `yaml:"diagnostics"`

	// Core
	DecryptWorkers int    `yaml:"decrypt_workers"`
	MemoPolicy     string `yaml:"memo_policy"`

	// Prover keys; both empty means an in-memory setup at startup
	ProvingKeyPath   string `yaml:"proving_key_path"`
	VerifyingKeyPath string `yaml:"verifying_key_path"`

	// Rate limiting per client address
	RateLimitBurst  int `yaml:"rate_limit_burst"`
	RateLimitRefill int `yaml:"rate_limit_refill"`
	RateLimitPeriod int `yaml:"rate_limit_period_ms"`

	// Buckets unused for this long are dropped
	RateLimitIdle int `yaml:"rate_limit_idle_seconds"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:       "127.0.0.1:8645",
		ReadTimeout:      30,
		WriteTimeout:     120,
		LogLevel:         "info",
		LogFile:          "",
		LogMaxSizeMB:     100,
		LogMaxAgeDays:    14,
		Diagnostics:      "stderr",
		DecryptWorkers:   0,
		MemoPolicy:       "truncate",
		ProvingKeyPath:   "keys/spend_pk.bin",
		VerifyingKeyPath: "keys/spend_vk.bin",
		RateLimitBurst:   60,
		RateLimitRefill:  10,
		RateLimitPeriod:  1000,
		RateLimitIdle:    600,
	}
}

// LoadConfig loads configuration from file or creates default
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); err == nil {
		raw, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		config := DefaultConfig()
		if err := yaml.Unmarshal(raw, config); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
		return config, nil
	}

	config := DefaultConfig()
	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save default config: %w", err)
	}
	return config, nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	raw, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(configPath, raw, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr must be set")
	}
	if c.ReadTimeout <= 0 || c.WriteTimeout <= 0 {
		return fmt.Errorf("read and write timeouts must be positive")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error")
	}
	switch c.Diagnostics {
	case "stdout", "stderr", "off":
	default:
		return fmt.Errorf("diagnostics must be one of stdout, stderr, off")
	}
	switch c.MemoPolicy {
	case "truncate", "reject":
	default:
		return fmt.Errorf("memo_policy must be truncate or reject")
	}
	if c.DecryptWorkers < 0 {
		return fmt.Errorf("decrypt_workers must not be negative")
	}
	if (c.ProvingKeyPath == "") != (c.VerifyingKeyPath == "") {
		return fmt.Errorf("proving_key_path and verifying_key_path must be set together")
	}
	if c.LogFile != "" && (c.LogMaxSizeMB <= 0 || c.LogMaxAgeDays <= 0) {
		return fmt.Errorf("log rotation limits must be positive")
	}
	if c.RateLimitBurst <= 0 || c.RateLimitRefill <= 0 || c.RateLimitPeriod <= 0 || c.RateLimitIdle <= 0 {
		return fmt.Errorf("rate limit settings must be positive")
	}
	return nil
}

func (c *Config) rateLimitPeriod() time.Duration {
	return time.Duration(c.RateLimitPeriod) * time.Millisecond
}

func (c *Config) rateLimitIdle() time.Duration {
	return time.Duration(c.RateLimitIdle) * time.Second
}
