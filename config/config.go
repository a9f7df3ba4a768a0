// Package config loads the optional YAML configuration file. Every field has
// a default; a missing file is a fully working setup.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// StatusDir is where session status records are written and read.
	StatusDir string `yaml:"status_dir"`
	// ClaudeSettingsPath is the agent settings file the hooks install into.
	ClaudeSettingsPath string `yaml:"claude_settings_path"`

	PollIntervalMS    int `yaml:"poll_interval_ms"`
	RefreshDebounceMS int `yaml:"refresh_debounce_ms"`
	WatchDebounceMS   int `yaml:"watch_debounce_ms"`
	MaxWaitMS         int `yaml:"max_wait_ms"`

	// DiffContext is the number of unchanged lines kept around each hunk.
	DiffContext int `yaml:"diff_context"`
}

func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		StatusDir:          filepath.Join(home, ".treeline-status"),
		ClaudeSettingsPath: filepath.Join(home, ".claude", "settings.json"),
		PollIntervalMS:     1000,
		RefreshDebounceMS:  300,
		WatchDebounceMS:    50,
		MaxWaitMS:          2000,
		DiffContext:        3,
	}
}

// Load reads path over the defaults, so partial files only override what
// they mention. A missing file returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromDefaultPath reads ~/.config/treeline/config.yaml.
func LoadFromDefaultPath() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Default(), nil
	}
	return Load(filepath.Join(home, ".config", "treeline", "config.yaml"))
}

func (c Config) PollInterval() time.Duration { return millis(c.PollIntervalMS) }

func (c Config) RefreshDebounce() time.Duration { return millis(c.RefreshDebounceMS) }

func (c Config) WatchDebounce() time.Duration { return millis(c.WatchDebounceMS) }

func (c Config) MaxWait() time.Duration { return millis(c.MaxWaitMS) }

func millis(ms int) time.Duration { return time.Duration(ms) * time.Millisecond }
