package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaultsWhenAbsent(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Threshold != 1000 {
		t.Errorf("Default threshold = %d, want 1000", cfg.Threshold)
	}
	if cfg.TonlBin != "tonl" {
		t.Errorf("Default tonl_bin = %q, want tonl", cfg.TonlBin)
	}
	if cfg.Watch.DebounceMS != 100 {
		t.Errorf("Default debounce = %d, want 100", cfg.Watch.DebounceMS)
	}
	if len(cfg.Watch.Extensions) == 0 {
		t.Error("Default watch extensions should not be empty")
	}
}

func TestLoadOverrides(t *testing.T) {
	root := t.TempDir()
	content := `
threshold = 500
tonl_bin = "/usr/local/bin/tonl"

[watch]
extensions = [".go"]
debounce_ms = 250
`
	if err := os.WriteFile(filepath.Join(root, Filename), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Threshold != 500 {
		t.Errorf("threshold = %d, want 500", cfg.Threshold)
	}
	if cfg.TonlBin != "/usr/local/bin/tonl" {
		t.Errorf("tonl_bin = %q", cfg.TonlBin)
	}
	if len(cfg.Watch.Extensions) != 1 || cfg.Watch.Extensions[0] != ".go" {
		t.Errorf("watch.extensions = %v", cfg.Watch.Extensions)
	}
	if cfg.Watch.DebounceMS != 250 {
		t.Errorf("watch.debounce_ms = %d, want 250", cfg.Watch.DebounceMS)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, Filename), []byte("threshold = 2000\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Threshold != 2000 {
		t.Errorf("threshold = %d, want 2000", cfg.Threshold)
	}
	if cfg.TonlBin != "tonl" {
		t.Errorf("Omitted tonl_bin should default, got %q", cfg.TonlBin)
	}
	if len(cfg.Watch.Extensions) == 0 {
		t.Error("Omitted watch.extensions should default")
	}
}

func TestLoadNormalizesBareExtensions(t *testing.T) {
	root := t.TempDir()
	content := `
[watch]
extensions = ["go", ".py", "ts"]
`
	if err := os.WriteFile(filepath.Join(root, Filename), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := []string{".go", ".py", ".ts"}
	if len(cfg.Watch.Extensions) != len(want) {
		t.Fatalf("watch.extensions = %v, want %v", cfg.Watch.Extensions, want)
	}
	for i, ext := range want {
		if cfg.Watch.Extensions[i] != ext {
			t.Errorf("watch.extensions[%d] = %q, want %q", i, cfg.Watch.Extensions[i], ext)
		}
	}
}

func TestLoadMalformed(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, Filename), []byte("threshold = [not toml"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	_, err := Load(root)
	if err == nil {
		t.Fatal("Expected parse error for malformed config")
	}
	if !strings.Contains(err.Error(), Filename) {
		t.Errorf("Error should name the config file, got: %v", err)
	}
}
