package schelling

import (
	"fmt"
	"math/rand/v2"

	"schelling-ca/internal/core"
	pcore "schelling-ca/pkg/core"
)

// Grid is the toroidal N×N board plus the set of its empty coordinates. The
// two are only mutated together so the set never goes stale.
type Grid struct {
	n     int
	cells *core.ByteGrid
	empty *EmptySet
}

// Initialize builds a grid for cfg: the population split of cfg is shuffled
// with rng and laid out in row-major order.
func Initialize(cfg Config, rng *rand.Rand) (*Grid, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pop := cfg.Population()
	states := make([]Cell, 0, cfg.Cells())
	for i := 0; i < pop.Red; i++ {
		states = append(states, Red)
	}
	for i := 0; i < pop.Blue; i++ {
		states = append(states, Blue)
	}
	for i := 0; i < pop.Empty; i++ {
		states = append(states, Empty)
	}
	pcore.Shuffle(rng, states)
	return FromCells(cfg.Size, states)
}

// FromCells builds a grid from row-major cell states.
func FromCells(n int, states []Cell) (*Grid, error) {
	if n <= 0 {
		return nil, fmt.Errorf("grid size %d must be positive: %w", n, ErrInvalidConfig)
	}
	if len(states) != n*n {
		return nil, fmt.Errorf("got %d cells for a %dx%d grid: %w", len(states), n, n, ErrInvalidConfig)
	}
	g := &Grid{n: n, cells: core.NewByteGrid(n, n)}
	buf := g.cells.Cells()
	for i, s := range states {
		if s > Blue {
			return nil, fmt.Errorf("cell %d holds invalid state %d: %w", i, s, ErrInvalidConfig)
		}
		buf[i] = uint8(s)
	}
	g.rebuildEmpty()
	return g, nil
}

func (g *Grid) rebuildEmpty() {
	buf := g.cells.Cells()
	g.empty = NewEmptySet(len(buf))
	for i, v := range buf {
		if Cell(v) == Empty {
			x, y := g.cells.Coords(i)
			g.empty.Add(Coord{X: x, Y: y})
		}
	}
}

// Size returns N.
func (g *Grid) Size() int { return g.n }

// At returns the state at (x, y), wrapping out-of-range coordinates.
func (g *Grid) At(x, y int) Cell { return Cell(g.cells.At(x, y)) }

// Set stores s at (x, y) and keeps the empty set in sync.
func (g *Grid) Set(x, y int, s Cell) {
	x, y = g.cells.Wrap(x, y)
	g.cells.Set(x, y, uint8(s))
	c := Coord{X: x, Y: y}
	if s == Empty {
		g.empty.Add(c)
		return
	}
	g.empty.Remove(c)
}

// Move transfers the agent at from into the empty cell to.
func (g *Grid) Move(from, to Coord) bool {
	state := g.At(from.X, from.Y)
	if !state.Occupied() || g.At(to.X, to.Y) != Empty {
		return false
	}
	g.Set(to.X, to.Y, state)
	g.Set(from.X, from.Y, Empty)
	return true
}

// Empty exposes the empty-cell set. Callers must not mutate it.
func (g *Grid) Empty() *EmptySet { return g.empty }

// Cells exposes the row-major backing buffer; values are Cell states.
func (g *Grid) Cells() []uint8 { return g.cells.Cells() }

// Snapshot returns a copy of the board in row-major order.
func (g *Grid) Snapshot() []Cell {
	buf := g.cells.Cells()
	out := make([]Cell, len(buf))
	for i, v := range buf {
		out[i] = Cell(v)
	}
	return out
}

// Counts tallies the board.
func (g *Grid) Counts() Population {
	var p Population
	for _, v := range g.cells.Cells() {
		switch Cell(v) {
		case Red:
			p.Red++
		case Blue:
			p.Blue++
		default:
			p.Empty++
		}
	}
	return p
}

// CheckConsistency verifies that the empty set equals the set of Empty cells.
func (g *Grid) CheckConsistency() error {
	buf := g.cells.Cells()
	empties := 0
	for i, v := range buf {
		x, y := g.cells.Coords(i)
		c := Coord{X: x, Y: y}
		isEmpty := Cell(v) == Empty
		if isEmpty {
			empties++
		}
		if isEmpty != g.empty.Contains(c) {
			return fmt.Errorf("cell (%d,%d) is %s but empty set membership is %v", x, y, Cell(v), g.empty.Contains(c))
		}
	}
	if empties != g.empty.Len() {
		return fmt.Errorf("empty set holds %d coordinates, grid has %d empty cells", g.empty.Len(), empties)
	}
	return nil
}
