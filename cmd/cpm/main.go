//go:build ebiten

package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"

	"cellpotts/internal/app"
	"cellpotts/internal/core"
	"cellpotts/internal/render"
	"cellpotts/internal/sims/potts"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	sim, err := open(cfg)
	if err != nil {
		log.Fatal(err)
	}
	seeded := false
	flag.Visit(func(f *flag.Flag) { seeded = seeded || f.Name == "seed" })
	if seeded {
		sim.Reset(cfg.Seed)
	}

	game := app.New(sim, render.Palette(sim.Spec().Kinds), cfg)
	size := sim.Size()

	ebiten.SetWindowTitle("cellpotts: " + sim.Name())
	ebiten.SetTPS(cfg.TPS)
	ebiten.SetWindowSize(size.W*cfg.Scale+max(cfg.HUDWidth, 0), size.H*cfg.Scale)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}

func open(cfg *app.Config) (*potts.Sim, error) {
	if cfg.File != "" {
		return potts.Load(cfg.File)
	}
	factory, ok := core.Sims()[cfg.Sim]
	if !ok {
		return nil, fmt.Errorf("unknown sim %q, available: %s", cfg.Sim, strings.Join(core.Names(), ", "))
	}
	return factory(nil).(*potts.Sim), nil
}
