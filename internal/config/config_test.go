package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"explorer/internal/config"
)

// ─────────────────────────────────────────────────────────────
// Defaults and precedence
// ─────────────────────────────────────────────────────────────

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9001 {
		t.Errorf("expected port 9001, got %d", cfg.Server.Port)
	}
	if cfg.Server.Origin != "*" || cfg.Server.RPM != 600 || cfg.Server.Burst != 100 {
		t.Errorf("unexpected server defaults: %+v", cfg.Server)
	}
	if cfg.Dataset.Source != "http" || cfg.Dataset.Method != "GET" || cfg.Dataset.Timeout != 30*time.Second {
		t.Errorf("unexpected dataset defaults: %+v", cfg.Dataset)
	}
	if !cfg.Warmup.Enabled || cfg.Warmup.Schedule != "@every 1m" || cfg.Warmup.Watch {
		t.Errorf("unexpected warmup defaults: %+v", cfg.Warmup)
	}
	if cfg.Log.Format != "text" || cfg.Log.Seq != "" {
		t.Errorf("unexpected log defaults: %+v", cfg.Log)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "explorer.yaml")
	yaml := `
server:
  port: 8080
  origin: https://example.com
dataset:
  source: json_file
  path: /data/stations.json
  datapath: items
log:
  level: debug
  format: json
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "")
	t.Setenv("EXPLORER_SERVER_ORIGIN", "https://other.example.com")
	t.Setenv("EXPLORER_WARMUP_WATCH", "true")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port from file, got %d", cfg.Server.Port)
	}
	if cfg.Server.Origin != "https://other.example.com" {
		t.Errorf("expected env to override file, got %q", cfg.Server.Origin)
	}
	if cfg.Dataset.DataPath != "items" {
		t.Errorf("expected datapath 'items', got %q", cfg.Dataset.DataPath)
	}
	if got := cfg.WatchPath(); got != "/data/stations.json" {
		t.Errorf("expected watch path, got %q", got)
	}
}

func TestLoad_BarePortWins(t *testing.T) {
	t.Setenv("EXPLORER_SERVER_PORT", "7000")
	t.Setenv("PORT", "7001")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7001 {
		t.Errorf("expected PORT to win, got %d", cfg.Server.Port)
	}
}

// ─────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"port out of range": {"PORT": "70000"},
		"bad log format":    {"EXPLORER_LOG_FORMAT": "xml"},
		"bad log level":     {"EXPLORER_LOG_LEVEL": "loud"},
		"watch without path": {
			"EXPLORER_DATASET_SOURCE": "json_file",
			"EXPLORER_WARMUP_WATCH":   "true",
		},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("PORT", "")
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := config.Load(""); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

// ─────────────────────────────────────────────────────────────
// Source config mapping
// ─────────────────────────────────────────────────────────────

func TestSourceConfig(t *testing.T) {
	d := config.DatasetConfig{
		URL:      "https://example.com/data.json",
		Method:   "GET",
		Timeout:  5 * time.Second,
		Path:     "stations.json",
		DataPath: "data.items",
		Port:     5432,
	}
	got := d.SourceConfig()

	want := map[string]any{
		"url":      "https://example.com/data.json",
		"method":   "GET",
		"timeout":  "5s",
		"filePath": "stations.json",
		"dataPath": "data.items",
		"port":     5432,
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d keys, got %d: %v", len(want), len(got), got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s: expected %v, got %v", k, v, got[k])
		}
	}
}

func TestSlogLevel(t *testing.T) {
	level, err := config.LogConfig{Level: "warn"}.SlogLevel()
	if err != nil {
		t.Fatalf("SlogLevel: %v", err)
	}
	if level.String() != "WARN" {
		t.Errorf("expected WARN, got %s", level)
	}
}
