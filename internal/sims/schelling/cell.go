package schelling

// Cell enumerates the state of a single grid position. The numeric values
// double as palette indices for rendering.
type Cell uint8

const (
	Empty Cell = iota
	Red
	Blue
)

func (c Cell) String() string {
	switch c {
	case Empty:
		return "empty"
	case Red:
		return "red"
	case Blue:
		return "blue"
	default:
		return "invalid"
	}
}

// Occupied reports whether the cell holds an agent.
func (c Cell) Occupied() bool { return c == Red || c == Blue }

// Coord addresses a grid position. X is the column and Y the row.
type Coord struct {
	X, Y int
}

// Population counts cells by state.
type Population struct {
	Red   int
	Blue  int
	Empty int
}

// Total returns the number of cells counted.
func (p Population) Total() int { return p.Red + p.Blue + p.Empty }

// Agents returns the number of occupied cells.
func (p Population) Agents() int { return p.Red + p.Blue }

// Bytes converts a board snapshot into palette indices.
func Bytes(cells []Cell) []uint8 {
	out := make([]uint8, len(cells))
	for i, c := range cells {
		out[i] = uint8(c)
	}
	return out
}
