package schelling

import "image/color"

var schellingPalette = []color.RGBA{
	Empty: {R: 255, G: 255, B: 255, A: 255},
	Red:   {R: 214, G: 39, B: 40, A: 255},
	Blue:  {R: 31, G: 119, B: 180, A: 255},
}

// Palette exposes the white/red/blue palette indexed by Cell value.
func (m *Model) Palette() []color.RGBA {
	return Palette()
}

// Palette returns a copy of the palette indexed by Cell value.
func Palette() []color.RGBA {
	out := make([]color.RGBA, len(schellingPalette))
	copy(out, schellingPalette)
	return out
}

// Legend describes the palette mapping for image captions.
const Legend = "0: Empty, 1: Red, 2: Blue"

// UnhappyMask marks every agent that would move on the next tick with 1.
func (m *Model) UnhappyMask() []float32 {
	n := m.grid.Size()
	mask := make([]float32, n*n)
	for _, c := range m.grid.Unhappy(m.cfg.Threshold) {
		mask[c.Y*n+c.X] = 1
	}
	return mask
}

// SimilarityMask holds, for each agent, the share of its occupied neighbors
// that have the same type. Empty and isolated cells are 0.
func (m *Model) SimilarityMask() []float32 {
	n := m.grid.Size()
	mask := make([]float32, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			own := m.grid.At(x, y)
			if !own.Occupied() {
				continue
			}
			occupied, same := m.grid.neighborCounts(x, y, own)
			if occupied > 0 {
				mask[y*n+x] = float32(same) / float32(occupied)
			}
		}
	}
	return mask
}
