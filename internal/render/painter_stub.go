//go:build !ebiten

package render

import "image/color"

// GridPainter is a placeholder for headless builds.
type GridPainter struct {
	w, h int
}

// NewGridPainter records the grid size without allocating GPU resources.
func NewGridPainter(w, h int) *GridPainter { return &GridPainter{w: w, h: h} }

// Blit is a no-op in the headless build.
func (gp *GridPainter) Blit(any, []uint8, []color.RGBA, int) {}

// Size returns the dimensions the painter was created with.
func (gp *GridPainter) Size() (int, int) { return gp.w, gp.h }
