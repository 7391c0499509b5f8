package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "collector.yaml")

	configContent := `
database:
  path: "/var/lib/alertcef/alertcef.db"

source:
  timeout: 10s
  rate_limit: 2
  rate_burst: 3

cef:
  vendor: "Example"
  product: "Detect"
  version: "2.1"

logs:
  primary_dir: "/var/log/alertcef"
  fallback_dir: "/tmp/alertcef"

ops:
  address: ":9191"

scheduler:
  tenant_concurrency: 4

archive:
  enabled: true
  addresses: ["ch1:9000", "ch2:9000"]
  database: "alerts"
  retention_days: 30
`

	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(configFile)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Database.Path != "/var/lib/alertcef/alertcef.db" {
		t.Errorf("Database.Path = %v", cfg.Database.Path)
	}
	if cfg.Source.Timeout != 10*time.Second {
		t.Errorf("Source.Timeout = %v, want 10s", cfg.Source.Timeout)
	}
	if cfg.Source.RateLimit != 2 {
		t.Errorf("Source.RateLimit = %v, want 2", cfg.Source.RateLimit)
	}
	if cfg.CEF.Vendor != "Example" {
		t.Errorf("CEF.Vendor = %v, want 'Example'", cfg.CEF.Vendor)
	}
	if cfg.Logs.PrimaryDir != "/var/log/alertcef" {
		t.Errorf("Logs.PrimaryDir = %v", cfg.Logs.PrimaryDir)
	}
	if cfg.Ops.Address != ":9191" {
		t.Errorf("Ops.Address = %v, want ':9191'", cfg.Ops.Address)
	}
	if cfg.Scheduler.TenantConcurrency != 4 {
		t.Errorf("Scheduler.TenantConcurrency = %d, want 4", cfg.Scheduler.TenantConcurrency)
	}
	if !cfg.Archive.Enabled {
		t.Error("Archive.Enabled = false, want true")
	}
	if len(cfg.Archive.Addresses) != 2 {
		t.Errorf("len(Archive.Addresses) = %d, want 2", len(cfg.Archive.Addresses))
	}
	if cfg.Archive.RetentionDays != 30 {
		t.Errorf("Archive.RetentionDays = %d, want 30", cfg.Archive.RetentionDays)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "collector.yaml")

	// Minimal config without defaults
	configContent := `
logs:
  primary_dir: "/var/log/alertcef"
  fallback_dir: "/tmp/alertcef"
`

	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(configFile)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	// Check defaults were applied
	if cfg.Database.Path != "data/alertcef.db" {
		t.Errorf("Database.Path = %v, want 'data/alertcef.db' (default)", cfg.Database.Path)
	}
	if cfg.Source.Timeout != 30*time.Second {
		t.Errorf("Source.Timeout = %v, want 30s (default)", cfg.Source.Timeout)
	}
	if cfg.Source.RateLimit != 5 {
		t.Errorf("Source.RateLimit = %v, want 5 (default)", cfg.Source.RateLimit)
	}
	if cfg.CEF.Vendor != "AlertCEF" {
		t.Errorf("CEF.Vendor = %v, want 'AlertCEF' (default)", cfg.CEF.Vendor)
	}
	if cfg.Ops.Address != ":9090" {
		t.Errorf("Ops.Address = %v, want ':9090' (default)", cfg.Ops.Address)
	}
	if cfg.Scheduler.TenantConcurrency != 1 {
		t.Errorf("Scheduler.TenantConcurrency = %d, want 1 (default)", cfg.Scheduler.TenantConcurrency)
	}
	if cfg.Archive.Enabled {
		t.Error("Archive.Enabled should default to false")
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		wantErr string
	}{
		{
			name:    "missing primary dir",
			config:  "logs:\n  fallback_dir: /tmp/alertcef",
			wantErr: "logs.primary_dir is required",
		},
		{
			name:    "missing fallback dir",
			config:  "logs:\n  primary_dir: /var/log/alertcef",
			wantErr: "logs.fallback_dir is required",
		},
		{
			name:    "archive enabled without addresses",
			config:  "logs:\n  primary_dir: /var/log/alertcef\n  fallback_dir: /tmp/alertcef\narchive:\n  enabled: true",
			wantErr: "archive.addresses is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			configFile := filepath.Join(tmpDir, "collector.yaml")

			if err := os.WriteFile(configFile, []byte(tt.config), 0644); err != nil {
				t.Fatalf("write config: %v", err)
			}

			_, err := LoadConfig(configFile)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("expected error for nonexistent file")
	}
}
