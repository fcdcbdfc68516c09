//go:build ebiten

package main

import (
	"errors"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/pflag"

	"schelling-ca/internal/app"
	_ "schelling-ca/internal/sims/schelling"
	"schelling-ca/internal/ui"
)

func main() {
	cfg := app.NewConfig()
	fs := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	cfg.Bind(fs)
	_ = fs.Parse(os.Args[1:])

	sim, err := cfg.Build()
	if err != nil {
		log.Fatal(err)
	}

	game := app.New(sim, cfg.Scale, cfg.TPS, cfg.Seed)
	size := sim.Size()
	height := size.H * cfg.Scale
	if height < ui.MinPanelHeight {
		height = ui.MinPanelHeight
	}

	ebiten.SetWindowTitle("schelling-ca: " + sim.Name())
	ebiten.SetWindowSize(size.W*cfg.Scale+app.PanelWidth, height)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
