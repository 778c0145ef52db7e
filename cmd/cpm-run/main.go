// Command cpm-run advances a Cellular Potts model without a window, logging
// progress and optionally writing a PNG of the final lattice plane.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"cellpotts/internal/core"
	"cellpotts/internal/render"
	"cellpotts/internal/sims/potts"
	"cellpotts/internal/sweep"
	"cellpotts/pkg/constraints"
	"cellpotts/pkg/cpm"
	"cellpotts/pkg/stats"
)

type options struct {
	sim      string
	file     string
	steps    int
	seed     int64
	debug    bool
	verbose  bool
	trace    bool
	png      string
	identity bool
	progress float64
}

func main() {
	var o options
	flag.StringVar(&o.sim, "sim", "act", "bundled scenario to run")
	flag.StringVar(&o.file, "file", "", "YAML model file (overrides -sim)")
	flag.IntVar(&o.steps, "steps", 100, "Monte Carlo steps to run")
	flag.Int64Var(&o.seed, "seed", -1, "seed override (negative keeps the model's seed)")
	flag.BoolVar(&o.debug, "debug", false, "check invariants after every step")
	flag.BoolVar(&o.verbose, "v", false, "log at debug level")
	flag.BoolVar(&o.trace, "trace", false, "log every pixel copy (implies -v)")
	flag.StringVar(&o.png, "png", "", "write the final frame to this PNG file")
	flag.BoolVar(&o.identity, "identity", false, "color cells by identity in the PNG")
	flag.Float64Var(&o.progress, "progress", 1, "progress reports per second")
	flag.Parse()

	level := slog.LevelInfo
	if o.verbose || o.trace {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(o, logger); err != nil {
		logger.Error("run failed", "err", err)
		os.Exit(1)
	}
}

func run(o options, logger *slog.Logger) error {
	sim, err := open(o, logger)
	if err != nil {
		return err
	}
	if o.seed >= 0 {
		sim.Reset(o.seed)
	}
	m := sim.Model()
	if o.trace {
		if err := m.Add(&constraints.EventLogger{Log: logger}); err != nil {
			return err
		}
	}
	logger.Info("model ready", "sim", sim.Name(), "extents", m.Extents(), "cells", m.NumCells(),
		"constraints", strings.Join(m.Constraints(), ","), "time", m.Time())

	built := sim.Built()
	pacer := core.NewPacer(o.progress)
	for k := 0; k < o.steps; k++ {
		if m.BorderSize() == 0 {
			logger.Warn("lattice is uniform, stopping", "time", m.Time())
			break
		}
		if err := built.Advance(); err != nil {
			return err
		}
		if pacer.Due() {
			logger.Info("progress", "time", m.Time(), "cells", m.NumCells(), "border", m.BorderSize())
		}
	}
	if err := m.CheckInvariants(); err != nil {
		return err
	}

	sim.Refresh()
	report(logger, sim)
	if o.png == "" {
		return nil
	}
	return writePNG(o, sim)
}

func open(o options, logger *slog.Logger) (*potts.Sim, error) {
	opts := []cpm.Option{cpm.WithLogger(logger), cpm.WithDebug(o.debug)}
	if o.file != "" {
		return potts.Load(o.file, opts...)
	}
	spec, ok := potts.Preset(o.sim)
	if !ok {
		return nil, fmt.Errorf("unknown sim %q, available: %s", o.sim, strings.Join(potts.Presets(), ", "))
	}
	return potts.New(spec, opts...)
}

func report(logger *slog.Logger, sim *potts.Sim) {
	m := sim.Model()
	sum := sweep.Summary(sim.Built())
	logger.Info("finished", "time", m.Time(), "cells", sum.Cells, "mean_volume", sum.Volume,
		"connectedness", sum.Connectedness, "active_pct", sum.Active)

	centroids := stats.Centroids(m)
	for _, id := range stats.SortedIDs(centroids) {
		c := centroids[id]
		logger.Debug("cell", "id", int(id), "kind", m.CellKind(id), "volume", m.Volume(id),
			"centroid", fmt.Sprintf("%.2f,%.2f,%.2f", c[0], c[1], c[2]))
	}
	if on := stats.CellsOnNetwork(m); len(on) > 0 {
		logger.Info("cells touching obstacles", "count", len(on))
	}
}

func writePNG(o options, sim *potts.Sim) (err error) {
	f, err := os.Create(o.png)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, f.Close()) }()
	layers := render.Layers{Identity: o.identity, Activity: true, Edges: true}
	return render.WritePNG(f, sim.Frame(), render.Palette(sim.Spec().Kinds), layers)
}
