package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DASHBOARD_CONFIG", "POF_DASHBOARD_PORT", "DASHBOARD_HOST", "LOG_LEVEL", "DASHBOARD_UI_PATH"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 3456 {
		t.Errorf("Port = %d, want 3456", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.Addr() != ":3456" {
		t.Errorf("Addr() = %q, want :3456", cfg.Addr())
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "dashboard.yaml")
	if err := os.WriteFile(path, []byte("port: 4000\nhost: 127.0.0.1\nlogLevel: debug\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DASHBOARD_CONFIG", path)
	t.Setenv("POF_DASHBOARD_PORT", "5000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 5000 {
		t.Errorf("Port = %d, want env value 5000", cfg.Port)
	}
	if cfg.Host != "127.0.0.1" || cfg.LogLevel != "debug" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Addr() != "127.0.0.1:5000" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"port out of range", map[string]string{"POF_DASHBOARD_PORT": "70000"}, "POF_DASHBOARD_PORT"},
		{"bad log level", map[string]string{"LOG_LEVEL": "loud"}, "LOG_LEVEL"},
		{"missing ui file", map[string]string{"DASHBOARD_UI_PATH": "/nonexistent/index.html"}, "DASHBOARD_UI_PATH"},
		{"missing config file", map[string]string{"DASHBOARD_CONFIG": "/nonexistent/dashboard.yaml"}, "read config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() err = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadIgnoresUnparseablePort(t *testing.T) {
	clearEnv(t)
	t.Setenv("POF_DASHBOARD_PORT", "abc")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 3456 {
		t.Errorf("Port = %d, want fallback 3456", cfg.Port)
	}
}
