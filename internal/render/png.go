package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	legendHeight  = 20
	legendPadding = 4
	swatchSize    = 10
)

// Options control how a board snapshot is drawn.
type Options struct {
	// Scale is the pixel size of one cell.
	Scale int
	// Palette maps cell values to colors.
	Palette []color.RGBA
	// Legend is drawn in a strip below the board when non-empty.
	Legend string
}

// Snapshot paints a w×h board of palette indices into a new image.
func Snapshot(cells []uint8, w, h int, opts Options) (*image.RGBA, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("render: invalid board size %dx%d", w, h)
	}
	if len(cells) != w*h {
		return nil, fmt.Errorf("render: got %d cells for a %dx%d board", len(cells), w, h)
	}
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}

	board := image.NewRGBA(image.Rect(0, 0, w, h))
	FillPaletteRGBA(board.Pix, cells, opts.Palette)

	face := basicfont.Face7x13
	width := w * scale
	height := h * scale
	if opts.Legend != "" {
		legendWidth := legendPadding*2 + len(opts.Palette)*(swatchSize+legendPadding) + font.MeasureString(face, opts.Legend).Ceil()
		width = max(width, legendWidth)
		height += legendHeight
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	for y := 0; y < h*scale; y++ {
		for x := 0; x < w*scale; x++ {
			img.SetRGBA(x, y, board.RGBAAt(x/scale, y/scale))
		}
	}

	if opts.Legend != "" {
		drawLegend(img, h*scale, opts.Palette, opts.Legend, face)
	}
	return img, nil
}

func drawLegend(img *image.RGBA, top int, palette []color.RGBA, legend string, face font.Face) {
	x := legendPadding
	swatchTop := top + (legendHeight-swatchSize)/2
	for _, col := range palette {
		r := image.Rect(x, swatchTop, x+swatchSize, swatchTop+swatchSize)
		draw.Draw(img, r, image.NewUniform(color.Black), image.Point{}, draw.Src)
		draw.Draw(img, r.Inset(1), image.NewUniform(col), image.Point{}, draw.Src)
		x += swatchSize + legendPadding
	}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.P(x, top+legendHeight-legendPadding-2),
	}
	d.DrawString(legend)
}

// WritePNG encodes img to path, creating parent directories as needed.
func WritePNG(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}

// FileName names the snapshot of a run from its threshold, move strategy and
// update order.
func FileName(h int, move, order string) string {
	return fmt.Sprintf("plot_H%d_Move__%s_Order__%s.png", h, move, order)
}

// TrialFileName is FileName with a trial suffix, for sweeps with more than
// one trial per configuration.
func TrialFileName(h int, move, order string, trial int) string {
	return fmt.Sprintf("plot_H%d_Move__%s_Order__%s_run%d.png", h, move, order, trial)
}
