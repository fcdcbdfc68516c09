//go:build ebiten

package ui

import (
	"image/color"
	"math"

	"schelling-ca/internal/core"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type maskProvider interface {
	UnhappyMask() []float32
	SimilarityMask() []float32
}

// Overlay draws optional diagnostic masks on top of the board.
// Key 1 toggles the unhappy agents, key 2 the same-type neighbor share.
type Overlay struct {
	sim            core.Sim
	scale          int
	showUnhappy    bool
	showSimilarity bool
	maskImg        *ebiten.Image
	maskBuf        []byte
}

// NewOverlay constructs a new overlay instance.
func NewOverlay(sim core.Sim, scale int) *Overlay {
	return &Overlay{sim: sim, scale: scale}
}

// Update toggles the masks from keyboard input.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit1) {
		o.showUnhappy = !o.showUnhappy
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit2) {
		o.showSimilarity = !o.showSimilarity
	}
}

// Draw renders the enabled masks onto the provided screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	if !o.showUnhappy && !o.showSimilarity {
		return
	}
	provider, ok := o.sim.(maskProvider)
	if !ok {
		return
	}
	size := o.sim.Size()
	total := size.W * size.H
	if total == 0 {
		return
	}
	if o.maskImg == nil || o.maskImg.Bounds().Dx() != size.W || o.maskImg.Bounds().Dy() != size.H {
		o.maskImg = ebiten.NewImage(size.W, size.H)
		o.maskBuf = make([]byte, 4*total)
	}

	if o.showSimilarity {
		o.drawMask(screen, provider.SimilarityMask(), color.RGBA{R: 40, G: 200, B: 90})
	}
	if o.showUnhappy {
		o.drawMask(screen, provider.UnhappyMask(), color.RGBA{R: 250, G: 210, B: 40})
	}
}

func (o *Overlay) drawMask(screen *ebiten.Image, mask []float32, tint color.RGBA) {
	if len(mask)*4 != len(o.maskBuf) {
		return
	}
	const (
		maxAlpha      = 170.0
		glowBase      = 0.35
		glowRange     = 0.65
		intensityBias = 0.75
	)

	for i, v := range mask {
		base := i * 4
		intensity := math.Min(math.Max(float64(v), 0), 1)
		if intensity == 0 {
			o.maskBuf[base+0] = 0
			o.maskBuf[base+1] = 0
			o.maskBuf[base+2] = 0
			o.maskBuf[base+3] = 0
			continue
		}

		alpha := math.Round(maxAlpha * math.Pow(intensity, intensityBias))
		glow := glowBase + glowRange*math.Sqrt(intensity)

		// Premultiplied alpha.
		o.maskBuf[base+0] = scaleColorComponent(tint.R, glow*alpha/255)
		o.maskBuf[base+1] = scaleColorComponent(tint.G, glow*alpha/255)
		o.maskBuf[base+2] = scaleColorComponent(tint.B, glow*alpha/255)
		o.maskBuf[base+3] = uint8(alpha)
	}
	o.maskImg.WritePixels(o.maskBuf)
	op := &ebiten.DrawImageOptions{}
	scale := o.scale
	if scale <= 0 {
		scale = 1
	}
	op.GeoM.Scale(float64(scale), float64(scale))
	screen.DrawImage(o.maskImg, op)
}

func scaleColorComponent(v uint8, factor float64) uint8 {
	scaled := math.Round(float64(v) * factor)
	if scaled < 0 {
		return 0
	}
	if scaled > 255 {
		return 255
	}
	return uint8(scaled)
}
