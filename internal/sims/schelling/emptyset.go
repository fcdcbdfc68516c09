package schelling

import (
	"math/rand/v2"

	pcore "schelling-ca/pkg/core"
)

// EmptySet tracks the coordinates currently holding Empty. Iteration order is
// insertion order, except that Remove moves the last element into the hole.
type EmptySet struct {
	items []Coord
	pos   map[Coord]int
}

// NewEmptySet allocates a set sized for n coordinates.
func NewEmptySet(n int) *EmptySet {
	if n < 0 {
		n = 0
	}
	return &EmptySet{items: make([]Coord, 0, n), pos: make(map[Coord]int, n)}
}

// Len returns the number of coordinates in the set.
func (s *EmptySet) Len() int { return len(s.items) }

// Contains reports whether c is in the set.
func (s *EmptySet) Contains(c Coord) bool {
	_, ok := s.pos[c]
	return ok
}

// Add inserts c. Adding a present coordinate is a no-op.
func (s *EmptySet) Add(c Coord) {
	if _, ok := s.pos[c]; ok {
		return
	}
	s.pos[c] = len(s.items)
	s.items = append(s.items, c)
}

// Remove deletes c and reports whether it was present.
func (s *EmptySet) Remove(c Coord) bool {
	i, ok := s.pos[c]
	if !ok {
		return false
	}
	last := len(s.items) - 1
	if i != last {
		moved := s.items[last]
		s.items[i] = moved
		s.pos[moved] = i
	}
	s.items = s.items[:last]
	delete(s.pos, c)
	return true
}

// Items returns a copy of the coordinates in iteration order.
func (s *EmptySet) Items() []Coord {
	out := make([]Coord, len(s.items))
	copy(out, s.items)
	return out
}

// Pick returns a uniformly random member. The boolean is false when the set
// is empty.
func (s *EmptySet) Pick(rng *rand.Rand) (Coord, bool) {
	return pcore.Pick(rng, s.items)
}
