package schelling

import (
	"cmp"
	"math/rand/v2"
	"slices"

	pcore "schelling-ca/pkg/core"
)

// Relocator picks a destination for an unhappy agent at origin. It reports
// false when no empty cell exists.
type Relocator interface {
	Destination(empty *EmptySet, origin Coord, rng *rand.Rand) (Coord, bool)
}

// RelocatorFor resolves the relocation policy for a move strategy.
func RelocatorFor(m MoveStrategy) (Relocator, error) {
	parsed, err := ParseMoveStrategy(string(m))
	if err != nil {
		return nil, err
	}
	switch parsed {
	case MoveHorizontal:
		return horizontalRelocator{}, nil
	case MoveNearest:
		return nearestRelocator{}, nil
	default:
		return uniformRelocator{}, nil
	}
}

type uniformRelocator struct{}

func (uniformRelocator) Destination(empty *EmptySet, _ Coord, rng *rand.Rand) (Coord, bool) {
	return empty.Pick(rng)
}

// horizontalRelocator orders the candidates by column distance and then
// draws uniformly from the whole ordered list, so every empty cell remains
// equally likely.
type horizontalRelocator struct{}

func (horizontalRelocator) Destination(empty *EmptySet, origin Coord, rng *rand.Rand) (Coord, bool) {
	return pcore.Pick(rng, OrderedByColumnDistance(empty.Items(), origin.X))
}

// nearestRelocator draws uniformly among the candidates sharing the minimal
// column distance to the origin.
type nearestRelocator struct{}

func (nearestRelocator) Destination(empty *EmptySet, origin Coord, rng *rand.Rand) (Coord, bool) {
	if empty.Len() == 0 {
		return Coord{}, false
	}
	ordered := OrderedByColumnDistance(empty.Items(), origin.X)
	best := columnDistance(ordered[0], origin.X)
	k := 1
	for k < len(ordered) && columnDistance(ordered[k], origin.X) == best {
		k++
	}
	return pcore.Pick(rng, ordered[:k])
}

// OrderedByColumnDistance stably sorts cells in place by |c.X - col| and
// returns them.
func OrderedByColumnDistance(cells []Coord, col int) []Coord {
	slices.SortStableFunc(cells, func(a, b Coord) int {
		return cmp.Compare(columnDistance(a, col), columnDistance(b, col))
	})
	return cells
}

func columnDistance(c Coord, col int) int {
	d := c.X - col
	if d < 0 {
		return -d
	}
	return d
}
