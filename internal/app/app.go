//go:build ebiten

package app

import (
	"image/color"
	"time"

	"schelling-ca/internal/core"
	"schelling-ca/internal/render"
	"schelling-ca/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// PanelWidth is the width of the HUD drawn to the right of the board.
const PanelWidth = 240

type paletteProvider interface {
	Palette() []color.RGBA
}

// Game adapts a core simulation to the ebiten.Game interface.
type Game struct {
	sim     core.Sim
	painter *render.GridPainter
	overlay *ui.Overlay
	hud     *ui.HUD
	pacer   *core.FixedStep
	palette []color.RGBA

	scale    int
	paused   bool
	tickOnce bool
	settled  bool
	ticks    int
	seed     int64
}

// New constructs a Game for the provided simulation.
func New(sim core.Sim, scale, tps int, seed int64) *Game {
	size := sim.Size()
	palette := []color.RGBA{{A: 255}, {R: 255, G: 255, B: 255, A: 255}}
	if p, ok := sim.(paletteProvider); ok {
		palette = p.Palette()
	}
	return &Game{
		sim:     sim,
		painter: render.NewGridPainter(size.W, size.H),
		overlay: ui.NewOverlay(sim, scale),
		hud:     ui.NewHUD(sim, PanelWidth),
		pacer:   core.NewFixedStep(tps),
		palette: palette,
		scale:   scale,
		seed:    seed,
	}
}

// Reset reinitializes the simulation state with the provided seed.
func (g *Game) Reset(seed int64) {
	g.seed = seed
	g.sim.Reset(seed)
	g.tickOnce = false
	g.settled = false
	g.ticks = 0
}

// Update handles per-frame logic and advances the simulation.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.tickOnce = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.Reset(g.seed)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.Reset(time.Now().UnixNano())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		g.pacer.SetTPS(g.pacer.TPS() * 2)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && g.pacer.TPS() > 1 {
		g.pacer.SetTPS(g.pacer.TPS() / 2)
	}

	g.overlay.Update()
	g.hud.Update(g.boardWidth())

	// A threshold change through the HUD can wake a settled board.
	if s, ok := g.sim.(settler); ok {
		g.settled = s.Settled()
	}

	due := g.pacer.ShouldStep()
	if g.tickOnce || (due && !g.paused && !g.settled) {
		if !g.sim.Step() {
			g.settled = true
		}
		g.ticks++
		g.tickOnce = false
	}
	if t, ok := g.sim.(ticker); ok {
		g.ticks = t.Ticks()
	}
	g.hud.SetStatus(Status(g.ticks, g.paused, g.settled, g.pacer.TPS()))
	return nil
}

// Draw renders the current simulation state.
func (g *Game) Draw(screen *ebiten.Image) {
	g.painter.Blit(screen, g.sim.Cells(), g.palette, g.scale)
	g.overlay.Draw(screen)
	g.hud.Draw(screen, g.boardWidth(), g.scale)
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	h := g.sim.Size().H * g.scale
	if h < ui.MinPanelHeight {
		h = ui.MinPanelHeight
	}
	return g.boardWidth() + PanelWidth, h
}

func (g *Game) boardWidth() int { return g.sim.Size().W * g.scale }
