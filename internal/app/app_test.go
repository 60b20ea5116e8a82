package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"explorer/internal/app"
	"explorer/internal/config"
)

func jsonFileConfig(t *testing.T) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rows.json")
	if err := os.WriteFile(path, []byte(`[{"Name": "a", "Count": 1}, {"Name": "b", "Count": 2}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	return &config.Config{
		Server:  config.ServerConfig{Port: 9001, Origin: "*"},
		Dataset: config.DatasetConfig{Source: "json_file", Path: path},
		Log:     config.LogConfig{Level: "error", Format: "text"},
		Warmup:  config.WarmupConfig{Enabled: true, Schedule: "@every 1h"},
	}
}

func TestStartup_WarmsDataset(t *testing.T) {
	a, err := app.New(jsonFileConfig(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := a.Startup(context.Background()); err != nil {
		t.Fatalf("Startup: %v", err)
	}
	defer a.Shutdown(context.Background())

	deadline := time.Now().Add(3 * time.Second)
	for !a.Explorer().Loaded() {
		if time.Now().After(deadline) {
			t.Fatal("dataset was not warmed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestStartup_WarmupDisabled(t *testing.T) {
	cfg := jsonFileConfig(t)
	cfg.Warmup.Enabled = false
	a, err := app.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := a.Startup(context.Background()); err != nil {
		t.Fatalf("Startup: %v", err)
	}
	defer a.Shutdown(context.Background())

	time.Sleep(50 * time.Millisecond)
	if a.Explorer().Loaded() {
		t.Error("expected the dataset to load lazily")
	}
}

func TestNew_UnknownSource(t *testing.T) {
	cfg := jsonFileConfig(t)
	cfg.Dataset.Source = "ftp"
	if _, err := app.New(cfg); err == nil {
		t.Fatal("expected an error for an unknown source")
	}
}
