// Package config loads optional per-project settings from .skillkit.toml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"skillkit/limits"
	"skillkit/tonl"
)

// Filename is the per-project config file looked up at the project root.
const Filename = ".skillkit.toml"

// Config represents the top-level tool configuration.
type Config struct {
	Threshold int         `toml:"threshold"`
	TonlBin   string      `toml:"tonl_bin"`
	Watch     WatchConfig `toml:"watch"`
}

// WatchConfig holds settings for the watch daemon.
type WatchConfig struct {
	Extensions []string `toml:"extensions"`
	DebounceMS int      `toml:"debounce_ms"`
}

// DefaultConfig returns a Config populated with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Threshold: limits.LargeFileLines,
		TonlBin:   tonl.DefaultBin,
		Watch: WatchConfig{
			Extensions: []string{".go", ".py", ".js", ".ts", ".tsx", ".jsx", ".rs", ".rb", ".java", ".swift", ".kt", ".c", ".cpp", ".h", ".json", ".tonl"},
			DebounceMS: 100,
		},
	}
}

// Load reads .skillkit.toml from root, falling back to defaults when the
// file is absent. A file that exists but fails to parse is an error.
func Load(root string) (*Config, error) {
	cfg := DefaultConfig()

	path := filepath.Join(root, Filename)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	// Partial files keep defaults for whatever they omit.
	if cfg.Threshold <= 0 {
		cfg.Threshold = limits.LargeFileLines
	}
	if cfg.TonlBin == "" {
		cfg.TonlBin = tonl.DefaultBin
	}
	if len(cfg.Watch.Extensions) == 0 {
		cfg.Watch.Extensions = DefaultConfig().Watch.Extensions
	}
	// Accept extensions written without the leading dot ("go" means ".go").
	for i, ext := range cfg.Watch.Extensions {
		if ext != "" && !strings.HasPrefix(ext, ".") {
			cfg.Watch.Extensions[i] = "." + ext
		}
	}
	if cfg.Watch.DebounceMS <= 0 {
		cfg.Watch.DebounceMS = 100
	}

	return cfg, nil
}
