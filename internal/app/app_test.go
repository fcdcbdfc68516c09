package app

import (
	"slices"
	"testing"

	"github.com/spf13/pflag"

	"schelling-ca/internal/sims/schelling"
)

func TestConfigBind(t *testing.T) {
	cfg := NewConfig()
	fs := pflag.NewFlagSet("view", pflag.ContinueOnError)
	cfg.Bind(fs)
	if err := fs.Parse([]string{"--scale", "3", "--tps", "30", "--seed", "9", "--set", "n=12,h=2"}); err != nil {
		t.Fatal(err)
	}
	if cfg.Sim != "schelling" || cfg.Scale != 3 || cfg.TPS != 30 || cfg.Seed != 9 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Params["n"] != "12" || cfg.Params["h"] != "2" {
		t.Fatalf("unexpected params %v", cfg.Params)
	}
}

func TestConfigBuild(t *testing.T) {
	cfg := NewConfig()
	cfg.Params = map[string]string{"n": "10", "h": "3"}
	sim, err := cfg.Build()
	if err != nil {
		t.Fatal(err)
	}
	if sim.Name() != "schelling" {
		t.Fatalf("built %q", sim.Name())
	}
	if size := sim.Size(); size.W != 10 || size.H != 10 {
		t.Fatalf("size = %+v, want 10x10", size)
	}
	model, ok := sim.(*schelling.Model)
	if !ok {
		t.Fatalf("unexpected sim type %T", sim)
	}
	if model.Config().Threshold != 3 {
		t.Fatalf("threshold = %d, want 3", model.Config().Threshold)
	}
}

func buildWith(t *testing.T, args ...string) *schelling.Model {
	t.Helper()
	cfg := NewConfig()
	fs := pflag.NewFlagSet("view", pflag.ContinueOnError)
	cfg.Bind(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatal(err)
	}
	sim, err := cfg.Build()
	if err != nil {
		t.Fatal(err)
	}
	return sim.(*schelling.Model)
}

func TestConfigBuildHonoursSeedParam(t *testing.T) {
	a := buildWith(t, "--set", "n=10,seed=5")
	b := buildWith(t, "--set", "n=10,seed=99")
	if slices.Equal(a.Cells(), b.Cells()) {
		t.Fatal("different seeds should build different boards")
	}

	for _, tt := range []struct {
		model *schelling.Model
		seed  int64
		value string
	}{
		{a, 5, "5"},
		{b, 99, "99"},
	} {
		if got := tt.model.Config().Seed; got != tt.seed {
			t.Fatalf("Config().Seed = %d, want %d", got, tt.seed)
		}
		if p, ok := tt.model.Parameters().Lookup("seed"); !ok || p.Value != tt.value {
			t.Fatalf("seed parameter = %+v, want %s", p, tt.value)
		}
		fresh, err := schelling.NewSeeded(tt.model.Config())
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(fresh.Cells(), tt.model.Cells()) {
			t.Fatalf("seed %d does not reproduce the board", tt.seed)
		}
	}
}

func TestConfigBuildSeedFlagWins(t *testing.T) {
	m := buildWith(t, "--seed", "7", "--set", "n=10,seed=5")
	if m.Config().Seed != 7 {
		t.Fatalf("Config().Seed = %d, want 7", m.Config().Seed)
	}
	def := buildWith(t, "--set", "n=10")
	if def.Config().Seed != NewConfig().Seed {
		t.Fatalf("Config().Seed = %d, want the viewer default", def.Config().Seed)
	}
}

func TestConfigBuildErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown sim", func(c *Config) { c.Sim = "life" }},
		{"zero scale", func(c *Config) { c.Scale = 0 }},
		{"bad seed", func(c *Config) { c.Params = map[string]string{"seed": "abc"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			if _, err := cfg.Build(); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		paused, settled bool
		want            string
	}{
		{false, false, "running  tick 7  10 tps"},
		{true, false, "paused  tick 7  10 tps"},
		{true, true, "settled  tick 7  10 tps"},
	}
	for _, tt := range tests {
		if got := Status(7, tt.paused, tt.settled, 10); got != tt.want {
			t.Fatalf("Status(%v,%v) = %q, want %q", tt.paused, tt.settled, got, tt.want)
		}
	}
}
