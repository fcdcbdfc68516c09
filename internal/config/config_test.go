package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"schelling-ca/internal/sims/schelling"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	configs, err := cfg.Configs()
	if err != nil {
		t.Fatal(err)
	}
	if len(configs) != 4 {
		t.Fatalf("default sweep expands to %d configs, want 4", len(configs))
	}
	for _, c := range configs {
		if c.Threshold != 4 || c.Size != 100 || c.EmptyRatio != 0.1 || c.MaxIterations != 5000 {
			t.Fatalf("unexpected expanded config %+v", c)
		}
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sweep.yaml")
	content := `size: 30
empty_ratio: 0.2
thresholds: [0, 1, 2]
moves: [horizontal-biased]
orders: [random]
trials: 2
output:
  render: false
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.Size != 30 || cfg.EmptyRatio != 0.2 || cfg.Trials != 2 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.MaxIterations != 5000 || cfg.Output.Scale != 4 {
		t.Fatalf("missing keys should keep defaults: %+v", cfg)
	}
	if cfg.Output.Render {
		t.Fatal("render should be disabled by the file")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	configs, err := cfg.Configs()
	if err != nil {
		t.Fatal(err)
	}
	if len(configs) != 3 {
		t.Fatalf("expected 3 configs, got %d", len(configs))
	}
	for i, c := range configs {
		if c.Threshold != i || c.Move != schelling.MoveHorizontal || c.Order != schelling.OrderRandom {
			t.Fatalf("config %d = %+v", i, c)
		}
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for a missing file")
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("size: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SweepConfig)
	}{
		{"zero trials", func(c *SweepConfig) { c.Trials = 0 }},
		{"negative workers", func(c *SweepConfig) { c.Workers = -1 }},
		{"no thresholds", func(c *SweepConfig) { c.Thresholds = nil }},
		{"bad scale", func(c *SweepConfig) { c.Output.Scale = 0 }},
		{"bad level", func(c *SweepConfig) { c.Logging.Level = "loud" }},
		{"threshold too high", func(c *SweepConfig) { c.Thresholds = []int{9} }},
		{"bad ratio", func(c *SweepConfig) { c.EmptyRatio = 1.2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestValidateLevelCaseInsensitive(t *testing.T) {
	for _, level := range []string{"DEBUG", "Trace", "info"} {
		cfg := Default()
		cfg.Logging.Level = level
		if err := cfg.Validate(); err != nil {
			t.Fatalf("level %q rejected: %v", level, err)
		}
	}
}

func TestValidateUnknownMove(t *testing.T) {
	cfg := Default()
	cfg.Moves = []string{"teleport"}
	if err := cfg.Validate(); !errors.Is(err, schelling.ErrUnknownOption) {
		t.Fatalf("expected ErrUnknownOption, got %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SCHELLING_SEED", "2024")
	t.Setenv("SCHELLING_WORKERS", "3")
	t.Setenv("SCHELLING_LOG_LEVEL", "DEBUG")
	t.Setenv("SCHELLING_OUTPUT_DIR", "/tmp/plots")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Seed != 2024 || cfg.Workers != 3 || cfg.Logging.Level != "debug" || cfg.Output.Dir != "/tmp/plots" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}

	t.Setenv("SCHELLING_WORKERS", "many")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for a non-numeric worker count")
	}
}
