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
	configFile := filepath.Join(tmpDir, "shipper.yaml")

	configContent := `
directories:
  - "/var/log/alertcef"
  - "/tmp/alertcef"

siem:
  host: "siem.example.com"
  port: 5514

interval: 30s
min_age: 5m
watch: true
`

	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(configFile)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if len(cfg.Directories) != 2 {
		t.Fatalf("len(Directories) = %d, want 2", len(cfg.Directories))
	}
	if cfg.SIEM.Host != "siem.example.com" {
		t.Errorf("SIEM.Host = %v, want 'siem.example.com'", cfg.SIEM.Host)
	}
	if cfg.SIEM.Port != 5514 {
		t.Errorf("SIEM.Port = %d, want 5514", cfg.SIEM.Port)
	}
	if cfg.Interval != 30*time.Second {
		t.Errorf("Interval = %v, want 30s", cfg.Interval)
	}
	if cfg.MinAge != 5*time.Minute {
		t.Errorf("MinAge = %v, want 5m", cfg.MinAge)
	}
	if !cfg.Watch {
		t.Error("Watch = false, want true")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "shipper.yaml")

	configContent := `
directories:
  - "/var/log/alertcef"

siem:
  host: "siem.example.com"
`

	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(configFile)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.SIEM.Port != 514 {
		t.Errorf("SIEM.Port = %d, want 514 (default)", cfg.SIEM.Port)
	}
	if cfg.Interval != time.Minute {
		t.Errorf("Interval = %v, want 1m (default)", cfg.Interval)
	}
	if cfg.MinAge != 2*time.Minute {
		t.Errorf("MinAge = %v, want 2m (default)", cfg.MinAge)
	}
	if cfg.Watch {
		t.Error("Watch should default to false")
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		wantErr string
	}{
		{
			name:    "no directories",
			config:  "siem:\n  host: siem.example.com",
			wantErr: "at least one directory is required",
		},
		{
			name:    "missing siem host",
			config:  "directories:\n  - /var/log/alertcef",
			wantErr: "siem.host is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			configFile := filepath.Join(tmpDir, "shipper.yaml")

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
