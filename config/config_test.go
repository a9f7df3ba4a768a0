package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Default()
	if cfg != want {
		t.Fatalf("cfg = %+v, want defaults %+v", cfg, want)
	}
	if cfg.RefreshDebounce() != 300*time.Millisecond {
		t.Fatalf("refresh debounce = %v", cfg.RefreshDebounce())
	}
}

func TestLoad_PartialFileOverridesOnlyNamedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "refresh_debounce_ms: 150\nstatus_dir: /tmp/status\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RefreshDebounceMS != 150 {
		t.Fatalf("refresh_debounce_ms = %d, want 150", cfg.RefreshDebounceMS)
	}
	if cfg.StatusDir != "/tmp/status" {
		t.Fatalf("status_dir = %q", cfg.StatusDir)
	}
	def := Default()
	if cfg.PollIntervalMS != def.PollIntervalMS || cfg.DiffContext != def.DiffContext {
		t.Fatalf("unnamed fields changed: %+v", cfg)
	}
}

func TestLoad_InvalidYAMLIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(":\n\t- broken"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("invalid yaml should fail")
	}
}
