package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, path, exists, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected missing config file to be reported as absent")
	}
	if path == "" {
		t.Fatal("expected resolved path even when file is missing")
	}
	defaults := Default()
	if cfg.Mosaic.CellSize != defaults.Mosaic.CellSize {
		t.Fatalf("expected default cell size %d, got %d", defaults.Mosaic.CellSize, cfg.Mosaic.CellSize)
	}
	if cfg.Video.FPS != DefaultFPS {
		t.Fatalf("expected default fps %d, got %d", DefaultFPS, cfg.Video.FPS)
	}
}

func TestLoadParsesAndClampsValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
palette_dir = "` + dir + `/emojis"
staging_dir = "` + dir + `/staging"

[mosaic]
cell_size = 100
max_block = 50

[video]
fps = -3
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if cfg.Mosaic.CellSize != MaxCellSize {
		t.Fatalf("expected cell size clamped to %d, got %d", MaxCellSize, cfg.Mosaic.CellSize)
	}
	if cfg.Mosaic.MaxBlock != MaxMaxBlock {
		t.Fatalf("expected max block clamped to %d, got %d", MaxMaxBlock, cfg.Mosaic.MaxBlock)
	}
	if cfg.Video.FPS != DefaultFPS {
		t.Fatalf("expected negative fps to fall back to %d, got %d", DefaultFPS, cfg.Video.FPS)
	}
}

func TestLoadRejectsUnknownLogFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[logging]
format = "xml"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected error for unsupported log format")
	}
}

func TestValidateRequiresTopicWithBroker(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	cfg.Live.MQTTBroker = "tcp://localhost:1883"
	cfg.Live.MQTTTopic = "  "
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when broker set without topic")
	}
}

func TestClampTable(t *testing.T) {
	cases := []struct {
		name string
		fn   func(int) int
		in   int
		want int
	}{
		{"size below min", ClampCellSize, 2, 4},
		{"size above max", ClampCellSize, 100, 48},
		{"size in range", ClampCellSize, 16, 16},
		{"block zero", ClampMaxBlock, 0, 1},
		{"block above max", ClampMaxBlock, 50, 20},
		{"block in range", ClampMaxBlock, 10, 10},
		{"fps zero", ClampFPS, 0, 10},
		{"fps positive", ClampFPS, 24, 24},
	}
	for _, tc := range cases {
		if got := tc.fn(tc.in); got != tc.want {
			t.Fatalf("%s: got %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestExpandPathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	expanded, err := ExpandPath("~/emojis")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if !strings.HasPrefix(expanded, home) {
		t.Fatalf("expected %q to be under %q", expanded, home)
	}
}

func TestCreateSampleWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[mosaic]") {
		t.Fatal("expected sample config to contain a [mosaic] section")
	}
}
