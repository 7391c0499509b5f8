// Package main provides the AlertCEF collector CLI.
package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the collector configuration.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Source    SourceConfig    `yaml:"source"`
	CEF       CEFConfig       `yaml:"cef"`
	Logs      LogsConfig      `yaml:"logs"`
	Ops       OpsConfig       `yaml:"ops"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Archive   ArchiveConfig   `yaml:"archive"`
}

// DatabaseConfig contains SQLite settings.
type DatabaseConfig struct {
	Path string `yaml:"path"` // SQLite database file path
}

// SourceConfig contains detection API client settings.
type SourceConfig struct {
	Timeout   time.Duration `yaml:"timeout"`    // per-request timeout (default: 30s)
	RateLimit float64       `yaml:"rate_limit"` // requests per second (default: 5)
	RateBurst int           `yaml:"rate_burst"` // limiter burst (default: 5)
}

// CEFConfig sets the fixed CEF header fields.
type CEFConfig struct {
	Vendor  string `yaml:"vendor"`
	Product string `yaml:"product"`
	Version string `yaml:"version"`
}

// LogsConfig contains log file output settings.
type LogsConfig struct {
	PrimaryDir  string `yaml:"primary_dir"`  // preferred log directory
	FallbackDir string `yaml:"fallback_dir"` // used when primary is not writable
}

// OpsConfig contains the metrics/health endpoint settings.
type OpsConfig struct {
	Address string `yaml:"address"` // listen address (default: :9090)
}

// SchedulerConfig contains polling loop settings.
type SchedulerConfig struct {
	TenantConcurrency int `yaml:"tenant_concurrency"` // tenants processed at once (default: 1)
}

// ArchiveConfig contains the optional ClickHouse raw-alert archive.
type ArchiveConfig struct {
	Enabled       bool     `yaml:"enabled"`
	Addresses     []string `yaml:"addresses"`
	Database      string   `yaml:"database"`
	Username      string   `yaml:"username"`
	Password      string   `yaml:"password"`
	Compression   bool     `yaml:"compression"`
	RetentionDays int      `yaml:"retention_days"`
}

// LoadConfig loads configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for missing config fields.
func (c *Config) setDefaults() {
	if c.Database.Path == "" {
		c.Database.Path = "data/alertcef.db"
	}
	if c.Source.Timeout <= 0 {
		c.Source.Timeout = 30 * time.Second
	}
	if c.Source.RateLimit <= 0 {
		c.Source.RateLimit = 5
	}
	if c.Source.RateBurst <= 0 {
		c.Source.RateBurst = 5
	}
	if c.CEF.Vendor == "" {
		c.CEF.Vendor = "AlertCEF"
	}
	if c.CEF.Product == "" {
		c.CEF.Product = "Collector"
	}
	if c.CEF.Version == "" {
		c.CEF.Version = "1.0"
	}
	if c.Ops.Address == "" {
		c.Ops.Address = ":9090"
	}
	if c.Scheduler.TenantConcurrency <= 0 {
		c.Scheduler.TenantConcurrency = 1
	}
	if c.Archive.RetentionDays <= 0 {
		c.Archive.RetentionDays = 90
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Logs.PrimaryDir == "" {
		return fmt.Errorf("logs.primary_dir is required")
	}
	if c.Logs.FallbackDir == "" {
		return fmt.Errorf("logs.fallback_dir is required")
	}
	if c.Archive.Enabled && len(c.Archive.Addresses) == 0 {
		return fmt.Errorf("archive.addresses is required when archive is enabled")
	}
	return nil
}
