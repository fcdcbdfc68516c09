package schelling

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"schelling-ca/internal/core"
	pcore "schelling-ca/pkg/core"
)

func smallConfig(size int, h int, move MoveStrategy, order UpdateOrder) Config {
	cfg := DefaultConfig()
	cfg.Size = size
	cfg.Threshold = h
	cfg.Move = move
	cfg.Order = order
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"default", func(*Config) {}, nil},
		{"zero size", func(c *Config) { c.Size = 0 }, ErrInvalidConfig},
		{"negative size", func(c *Config) { c.Size = -4 }, ErrInvalidConfig},
		{"ratio below zero", func(c *Config) { c.EmptyRatio = -0.1 }, ErrInvalidConfig},
		{"ratio above one", func(c *Config) { c.EmptyRatio = 1.5 }, ErrInvalidConfig},
		{"threshold below zero", func(c *Config) { c.Threshold = -1 }, ErrInvalidConfig},
		{"threshold above eight", func(c *Config) { c.Threshold = 9 }, ErrInvalidConfig},
		{"no iterations", func(c *Config) { c.MaxIterations = 0 }, ErrInvalidConfig},
		{"unknown move", func(c *Config) { c.Move = "teleport" }, ErrUnknownOption},
		{"unknown order", func(c *Config) { c.Order = "reverse" }, ErrUnknownOption},
		{"alias move", func(c *Config) { c.Move = "horizontal-biased" }, nil},
		{"alias order", func(c *Config) { c.Order = "randomized" }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewFailsOnUnknownOption(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Order = "backwards"
	if _, err := NewSeeded(cfg); !errors.Is(err, ErrUnknownOption) {
		t.Fatalf("expected ErrUnknownOption, got %v", err)
	}
}

func TestNewNormalisesAliases(t *testing.T) {
	cfg := smallConfig(5, 2, "horizontal-biased", "randomized")
	m, err := NewSeeded(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if m.Config().Move != MoveHorizontal || m.Config().Order != OrderRandom {
		t.Fatalf("aliases not normalised: %+v", m.Config())
	}
}

func TestEmptySetConsistentAfterEveryTick(t *testing.T) {
	for _, move := range []MoveStrategy{MoveRandom, MoveHorizontal, MoveNearest} {
		for _, order := range []UpdateOrder{OrderSequential, OrderRandom} {
			t.Run(fmt.Sprintf("%s/%s", move, order), func(t *testing.T) {
				cfg := smallConfig(20, 4, move, order)
				cfg.MaxIterations = 40
				m, err := New(cfg, pcore.NewSource(21))
				if err != nil {
					t.Fatal(err)
				}
				want := m.Grid().Counts()
				m.SetTickHook(func(tick int, stats StepStats) {
					if err := m.Grid().CheckConsistency(); err != nil {
						t.Fatalf("tick %d: %v", tick, err)
					}
					if got := m.Grid().Counts(); got != want {
						t.Fatalf("tick %d: population changed from %+v to %+v", tick, want, got)
					}
					if stats.Moved+stats.Stranded > stats.Unhappy {
						t.Fatalf("tick %d: inconsistent stats %+v", tick, stats)
					}
				})
				out, err := m.Run(context.Background())
				if err != nil {
					t.Fatal(err)
				}
				if out.Iterations < 1 || out.Iterations > cfg.MaxIterations {
					t.Fatalf("iterations %d outside [1,%d]", out.Iterations, cfg.MaxIterations)
				}
			})
		}
	}
}

func TestRunRespectsCap(t *testing.T) {
	cfg := smallConfig(10, MaxThreshold, MoveRandom, OrderRandom)
	cfg.MaxIterations = 3
	out, _, err := Run(context.Background(), cfg, pcore.NewSource(4))
	if err != nil {
		t.Fatal(err)
	}
	if out.Iterations > cfg.MaxIterations {
		t.Fatalf("ran %d ticks past the cap of %d", out.Iterations, cfg.MaxIterations)
	}
	if out.State == Capped && out.Iterations != cfg.MaxIterations {
		t.Fatalf("capped run reported %d iterations, want %d", out.Iterations, cfg.MaxIterations)
	}
	if out.State != Capped {
		t.Fatalf("H=8 with 10%% empty cells should not settle in 3 ticks, got %s", out.State)
	}
}

func TestSmallGridZeroThresholdConverges(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		cfg := smallConfig(4, 0, MoveRandom, OrderSequential)
		cfg.EmptyRatio = 0.25
		out, grid, err := Run(context.Background(), cfg, pcore.NewSource(seed))
		if err != nil {
			t.Fatal(err)
		}
		if out.State != Converged || out.Iterations > 2 {
			t.Fatalf("seed %d: got %+v, want convergence within 2 ticks", seed, out)
		}
		if err := grid.CheckConsistency(); err != nil {
			t.Fatal(err)
		}
	}
}

func TestConvergenceIsIdempotent(t *testing.T) {
	cfg := smallConfig(4, 0, MoveHorizontal, OrderRandom)
	cfg.EmptyRatio = 0.25
	m, err := New(cfg, pcore.NewSource(2))
	if err != nil {
		t.Fatal(err)
	}
	out, err := m.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if out.State != Converged {
		t.Fatalf("expected convergence, got %+v", out)
	}
	before := m.Grid().Snapshot()
	if m.Step() {
		t.Fatal("a tick after convergence should not move anybody")
	}
	if !slices.Equal(before, m.Grid().Snapshot()) {
		t.Fatal("board changed after convergence")
	}
	if !m.Settled() {
		t.Fatal("model should report settled")
	}
}

func TestFullBoardStrandsUnhappyAgents(t *testing.T) {
	g := gridFrom(t,
		"RBR",
		"BRB",
		"RBR",
	)
	m := &Model{cfg: smallConfig(3, MaxThreshold, MoveRandom, OrderSequential), grid: g, rng: pcore.NewSource(1), reloc: uniformRelocator{}}
	m.cfg.MaxIterations = 10
	stats := m.Tick()
	if stats.Unhappy != 9 || stats.Stranded != 9 || stats.Moved != 0 {
		t.Fatalf("unexpected stats on a full board: %+v", stats)
	}
	out, err := m.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if out != (Outcome{Iterations: 1, State: Converged}) {
		t.Fatalf("full board should converge immediately, got %+v", out)
	}
}

func TestTickComputesUnhappySetOnce(t *testing.T) {
	// Both agents are isolated. Sequential order moves (0,0) first; wherever
	// it lands, (2,2) was already marked unhappy and must still be processed.
	g := gridFrom(t,
		"R....",
		".....",
		"..B..",
		".....",
		".....",
	)
	m := &Model{cfg: smallConfig(5, 1, MoveRandom, OrderSequential), grid: g, rng: pcore.NewSource(9), reloc: uniformRelocator{}}
	stats := m.Tick()
	if stats.Unhappy != 2 || stats.Moved != 2 {
		t.Fatalf("expected both agents to move, got %+v", stats)
	}
	if err := g.CheckConsistency(); err != nil {
		t.Fatal(err)
	}
}

func TestRunDeterministicForSeed(t *testing.T) {
	cfg := smallConfig(15, 3, MoveHorizontal, OrderRandom)
	cfg.MaxIterations = 200

	outA, gridA, err := Run(context.Background(), cfg, pcore.NewSource(77))
	if err != nil {
		t.Fatal(err)
	}
	outB, gridB, err := Run(context.Background(), cfg, pcore.NewSource(77))
	if err != nil {
		t.Fatal(err)
	}
	if outA != outB {
		t.Fatalf("outcomes differ for the same seed: %+v vs %+v", outA, outB)
	}
	if !slices.Equal(gridA.Snapshot(), gridB.Snapshot()) {
		t.Fatal("final boards differ for the same seed")
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out, _, err := Run(ctx, smallConfig(8, 4, MoveRandom, OrderSequential), pcore.NewSource(1))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if out.State != Cancelled || out.Iterations != 0 {
		t.Fatalf("unexpected outcome %+v", out)
	}
}

func TestResetDeterministic(t *testing.T) {
	m, err := NewSeeded(smallConfig(12, 4, MoveRandom, OrderRandom))
	if err != nil {
		t.Fatal(err)
	}
	m.Reset(99)
	initial := append([]uint8(nil), m.Cells()...)
	for i := 0; i < 5; i++ {
		m.Step()
	}
	if m.Ticks() != 5 {
		t.Fatalf("Ticks() = %d, want 5", m.Ticks())
	}
	m.Reset(99)
	if !slices.Equal(initial, m.Cells()) {
		t.Fatal("Reset with the same seed should rebuild the same board")
	}
	if m.Ticks() != 0 || m.Settled() {
		t.Fatal("Reset should clear the tick counter and settled flag")
	}
}

func TestResetRecordsSeed(t *testing.T) {
	cfg := smallConfig(8, 3, MoveRandom, OrderSequential)
	m, err := NewSeeded(cfg)
	if err != nil {
		t.Fatal(err)
	}
	m.Reset(42)
	if m.Config().Seed != 42 {
		t.Fatalf("Config().Seed = %d after Reset(42)", m.Config().Seed)
	}
	if p, ok := m.Parameters().Lookup("seed"); !ok || p.Value != "42" {
		t.Fatalf("seed parameter = %+v, want 42", p)
	}
	board := append([]uint8(nil), m.Cells()...)

	// Zero reuses the recorded seed.
	m.Reset(0)
	if m.Config().Seed != 42 || !slices.Equal(board, m.Cells()) {
		t.Fatal("Reset(0) should rebuild the board of the recorded seed")
	}

	fresh, err := NewSeeded(m.Config())
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(board, fresh.Cells()) {
		t.Fatal("the recorded seed should reproduce the board")
	}
}

func TestRegistryBuildsSchelling(t *testing.T) {
	factory, ok := core.Sims()["schelling"]
	if !ok {
		t.Fatal("schelling should register itself")
	}
	sim := factory(map[string]string{"n": "12", "h": "3", "move": "horizontal"})
	if sim.Size() != (core.Size{W: 12, H: 12}) {
		t.Fatalf("factory ignored size, got %+v", sim.Size())
	}
	if len(sim.Cells()) != 144 {
		t.Fatalf("expected 144 cells, got %d", len(sim.Cells()))
	}
	m := sim.(*Model)
	if m.Config().Threshold != 3 || m.Config().Move != MoveHorizontal {
		t.Fatalf("factory ignored options: %+v", m.Config())
	}
}

func TestFromMapIgnoresInvalidValues(t *testing.T) {
	cfg := FromMap(map[string]string{"n": "-3", "h": "12", "empty_ratio": "2", "move": "sideways", "max_iter": "x"})
	if cfg != DefaultConfig() {
		t.Fatalf("invalid values should keep defaults, got %+v", cfg)
	}
}

func TestSetIntParameterClampsThreshold(t *testing.T) {
	m, err := NewSeeded(smallConfig(6, 4, MoveRandom, OrderSequential))
	if err != nil {
		t.Fatal(err)
	}
	if !m.SetIntParameter("h", 20) {
		t.Fatal("h should be adjustable")
	}
	if m.Config().Threshold != MaxThreshold {
		t.Fatalf("threshold = %d, want %d", m.Config().Threshold, MaxThreshold)
	}
	if m.SetIntParameter("n", 3) {
		t.Fatal("size is not adjustable at runtime")
	}
	p, ok := m.Parameters().Lookup("h")
	if !ok || p.Value != "8" {
		t.Fatalf("parameter snapshot reports h=%q", p.Value)
	}
}
