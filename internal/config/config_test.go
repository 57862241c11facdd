package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Dir != nil || cfg.Recorder.MaxTrials != nil {
		t.Fatalf("expected zero config, got %+v", cfg)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[storage]
dir = "/tmp/traj"

[recorder]
max-trials = 3
event-release-ms = 450

[recorder.keys]
start = "g"

[replay]
delay-cap-ms = 250

[replay.keys]
pause = "space"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Dir == nil || *cfg.Storage.Dir != "/tmp/traj" {
		t.Fatalf("unexpected storage dir %v", cfg.Storage.Dir)
	}
	if cfg.Recorder.MaxTrials == nil || *cfg.Recorder.MaxTrials != 3 {
		t.Fatalf("unexpected max trials %v", cfg.Recorder.MaxTrials)
	}
	if cfg.Recorder.EventReleaseMs == nil || *cfg.Recorder.EventReleaseMs != 450 {
		t.Fatalf("unexpected event release %v", cfg.Recorder.EventReleaseMs)
	}
	if cfg.Replay.DelayCapMs == nil || *cfg.Replay.DelayCapMs != 250 {
		t.Fatalf("unexpected delay cap %v", cfg.Replay.DelayCapMs)
	}
	if cfg.Recorder.FPS != nil {
		t.Fatalf("expected unset fps")
	}
	if cfg.Recorder.Keys["start"] != "g" {
		t.Fatalf("unexpected recorder keys %+v", cfg.Recorder.Keys)
	}
	if cfg.Replay.Keys["pause"] != "space" {
		t.Fatalf("unexpected replay keys %+v", cfg.Replay.Keys)
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[recorder]\nmax-trails = 3\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestDefaultPathsHonourXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "pursuit", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultCatalogPath(); got != filepath.Join("/data", "pursuit", "catalog.db") {
		t.Fatalf("unexpected catalog path %q", got)
	}
}
