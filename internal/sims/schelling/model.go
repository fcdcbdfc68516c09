package schelling

import (
	"context"
	"math/rand/v2"

	"schelling-ca/internal/core"
	pcore "schelling-ca/pkg/core"
)

// State is the terminal classification of a run.
type State uint8

const (
	Running State = iota
	Converged
	Capped
	Cancelled
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Converged:
		return "converged"
	case Capped:
		return "capped"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Outcome is what a run returns: the tick count, including the final no-move
// tick, and how the loop ended.
type Outcome struct {
	Iterations int
	State      State
}

// StepStats summarises one tick.
type StepStats struct {
	Unhappy  int
	Moved    int
	Stranded int
}

// AnyMoved reports whether at least one agent relocated.
func (s StepStats) AnyMoved() bool { return s.Moved > 0 }

// TickHook observes every tick of Run.
type TickHook func(tick int, stats StepStats)

// Model couples a grid with the configuration and random source driving it.
type Model struct {
	cfg   Config
	grid  *Grid
	rng   *rand.Rand
	reloc Relocator

	tick int
	last StepStats
	done bool
	hook TickHook
}

// New validates cfg and initialises a board using rng. Every random decision
// of the model draws from rng.
func New(cfg Config, rng *rand.Rand) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	move, err := ParseMoveStrategy(string(cfg.Move))
	if err != nil {
		return nil, err
	}
	order, err := ParseUpdateOrder(string(cfg.Order))
	if err != nil {
		return nil, err
	}
	cfg.Move, cfg.Order = move, order
	reloc, err := RelocatorFor(move)
	if err != nil {
		return nil, err
	}
	grid, err := Initialize(cfg, rng)
	if err != nil {
		return nil, err
	}
	return &Model{cfg: cfg, grid: grid, rng: rng, reloc: reloc}, nil
}

// NewSeeded is New with a PCG source seeded from cfg.Seed.
func NewSeeded(cfg Config) (*Model, error) {
	return New(cfg, pcore.NewSource(cfg.Seed))
}

// Config returns the configuration the model runs with.
func (m *Model) Config() Config { return m.cfg }

// Grid exposes the live board.
func (m *Model) Grid() *Grid { return m.grid }

// Ticks returns the number of ticks since the last reset.
func (m *Model) Ticks() int { return m.tick }

// LastStats returns the statistics of the most recent tick.
func (m *Model) LastStats() StepStats { return m.last }

// Settled reports whether the most recent tick moved nobody.
func (m *Model) Settled() bool { return m.done }

// SetTickHook installs fn to be called after every tick of Run.
func (m *Model) SetTickHook(fn TickHook) { m.hook = fn }

// Tick advances the board by one update. The unhappy set is computed once up
// front; moves made during the tick are not re-evaluated until the next one.
func (m *Model) Tick() StepStats {
	unhappy := m.grid.Unhappy(m.cfg.Threshold)
	stats := StepStats{Unhappy: len(unhappy)}
	if m.cfg.Order == OrderRandom {
		pcore.Shuffle(m.rng, unhappy)
	}
	for _, origin := range unhappy {
		dest, ok := m.reloc.Destination(m.grid.empty, origin, m.rng)
		if !ok {
			stats.Stranded++
			continue
		}
		if m.grid.Move(origin, dest) {
			stats.Moved++
		}
	}
	m.tick++
	m.last = stats
	m.done = !stats.AnyMoved()
	return stats
}

// Run ticks until a tick moves nobody or MaxIterations ticks have run.
// Reaching the cap is a normal outcome, not an error. ctx is checked between
// ticks; a cancelled run reports Cancelled together with ctx.Err().
func (m *Model) Run(ctx context.Context) (Outcome, error) {
	iterations := 0
	for iterations < m.cfg.MaxIterations {
		if err := ctx.Err(); err != nil {
			return Outcome{Iterations: iterations, State: Cancelled}, err
		}
		stats := m.Tick()
		iterations++
		if m.hook != nil {
			m.hook(iterations, stats)
		}
		if !stats.AnyMoved() {
			return Outcome{Iterations: iterations, State: Converged}, nil
		}
	}
	return Outcome{Iterations: iterations, State: Capped}, nil
}

// Run builds a model for cfg from rng and runs it to completion, returning
// the outcome together with the final board.
func Run(ctx context.Context, cfg Config, rng *rand.Rand) (Outcome, *Grid, error) {
	m, err := New(cfg, rng)
	if err != nil {
		return Outcome{}, nil, err
	}
	out, err := m.Run(ctx)
	return out, m.grid, err
}

// Name returns the simulation identifier.
func (m *Model) Name() string { return "schelling" }

// Size reports the grid dimensions.
func (m *Model) Size() core.Size { return core.Size{W: m.cfg.Size, H: m.cfg.Size} }

// Cells exposes the live board as palette indices.
func (m *Model) Cells() []uint8 { return m.grid.Cells() }

// Step advances one tick and reports whether anybody moved.
func (m *Model) Step() bool { return m.Tick().AnyMoved() }

// Reset rebuilds the board from a fresh source seeded with seed, or with the
// configured seed when seed is zero. The seed used becomes the configured one.
func (m *Model) Reset(seed int64) {
	effective := seed
	if effective == 0 {
		effective = m.cfg.Seed
	}
	m.cfg.Seed = effective
	m.rng = pcore.NewSource(effective)
	grid, err := Initialize(m.cfg, m.rng)
	if err != nil {
		// cfg was validated by New and only SetIntParameter mutates it.
		panic(err)
	}
	m.grid = grid
	m.tick = 0
	m.last = StepStats{}
	m.done = false
}

func init() {
	core.Register("schelling", func(cfg map[string]string) core.Sim {
		c := FromMap(cfg)
		m, err := NewSeeded(c)
		if err != nil {
			m, _ = NewSeeded(DefaultConfig())
		}
		return m
	})
}
