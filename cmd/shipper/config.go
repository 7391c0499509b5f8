// Package main provides the AlertCEF shipper CLI.
package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the shipper configuration.
type Config struct {
	Directories []string      `yaml:"directories"` // log directories to scan
	SIEM        SIEMConfig    `yaml:"siem"`
	Interval    time.Duration `yaml:"interval"` // scan interval (default: 1m)
	MinAge      time.Duration `yaml:"min_age"`  // skip files modified more recently (default: 2m)
	Watch       bool          `yaml:"watch"`    // also trigger on filesystem events
}

// SIEMConfig contains the SIEM collector endpoint.
type SIEMConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"` // default: 514
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
	if c.SIEM.Port == 0 {
		c.SIEM.Port = 514
	}
	if c.Interval <= 0 {
		c.Interval = time.Minute
	}
	if c.MinAge <= 0 {
		c.MinAge = 2 * time.Minute
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if len(c.Directories) == 0 {
		return fmt.Errorf("at least one directory is required")
	}
	if c.SIEM.Host == "" {
		return fmt.Errorf("siem.host is required")
	}
	return nil
}
