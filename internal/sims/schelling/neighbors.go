package schelling

import "schelling-ca/internal/core"

// Neighbors returns the non-empty states among the eight toroidal Moore
// neighbors of (x, y). On very small boards several offsets may wrap onto
// the same cell; each offset is still counted.
func (g *Grid) Neighbors(x, y int) []Cell {
	out := make([]Cell, 0, len(core.MooreOffsets))
	for _, off := range core.MooreOffsets {
		s := g.At(x+off[0], y+off[1])
		if s != Empty {
			out = append(out, s)
		}
	}
	return out
}

func (g *Grid) neighborCounts(x, y int, own Cell) (occupied, same int) {
	for _, off := range core.MooreOffsets {
		s := g.At(x+off[0], y+off[1])
		if s == Empty {
			continue
		}
		occupied++
		if s == own {
			same++
		}
	}
	return occupied, same
}

// IsHappy reports whether the agent at (x, y) has at least h same-type
// neighbors. An agent without any occupied neighbor is never happy, whatever
// h is. Empty cells are never happy.
func (g *Grid) IsHappy(x, y, h int) bool {
	own := g.At(x, y)
	if !own.Occupied() {
		return false
	}
	occupied, same := g.neighborCounts(x, y, own)
	if occupied == 0 {
		return false
	}
	return same >= h
}

// Unhappy scans the board in row-major order and returns every agent that is
// not happy under threshold h.
func (g *Grid) Unhappy(h int) []Coord {
	var out []Coord
	for y := 0; y < g.n; y++ {
		for x := 0; x < g.n; x++ {
			if !g.At(x, y).Occupied() {
				continue
			}
			if !g.IsHappy(x, y, h) {
				out = append(out, Coord{X: x, Y: y})
			}
		}
	}
	return out
}
