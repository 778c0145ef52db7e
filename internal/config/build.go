package config

import (
	"fmt"
	"math"

	"cellpotts/pkg/constraints"
	"cellpotts/pkg/cpm"
	"cellpotts/pkg/manip"
	"cellpotts/pkg/seed"
)

// Built is a model assembled from a file, with handles on the constraints
// that renderers and statistics read from.
type Built struct {
	Spec      Model
	Model     *cpm.Model
	Activity  *constraints.Activity
	Perimeter *constraints.Perimeter
	Bias      *constraints.DirectionalBias
}

// Build creates the model, registers its constraints, places obstacles and
// cells, and runs the burn-in steps. Constraints are registered in a fixed
// order so that runs are reproducible: hard constraints (the obstacle barrier
// and the volume range) first, then adhesion, volume, perimeter, activity and
// bias.
func Build(spec Model, opts ...cpm.Option) (*Built, error) {
	m, err := cpm.New(cpm.Config{
		Extents:     spec.Lattice.Extents,
		Torus:       spec.Lattice.Torus,
		Seed:        spec.Seed,
		Temperature: spec.Temperature,
	}, opts...)
	if err != nil {
		return nil, err
	}
	b := &Built{Spec: spec, Model: m}

	var list []cpm.Constraint
	if len(spec.Obstacles) > 0 {
		list = append(list, constraints.Barrier{})
	}
	if r := spec.VolumeRange; r != nil {
		list = append(list, &constraints.HardVolumeRange{Min: r.Min, Max: r.Max})
	}
	if a := spec.Adhesion; a != nil {
		list = append(list, &constraints.Adhesion{J: a.J})
	}
	if v := spec.Volume; v != nil {
		list = append(list, &constraints.Volume{V: v.Target, Lambda: v.Lambda})
	}
	if p := spec.Perimeter; p != nil {
		b.Perimeter = &constraints.Perimeter{P: p.Target, Lambda: p.Lambda}
		list = append(list, b.Perimeter)
	}
	if a := spec.Activity; a != nil {
		mean, err := constraints.ParseActivityMean(a.Mean)
		if err != nil {
			return nil, err
		}
		b.Activity = &constraints.Activity{Max: a.Max, Lambda: a.Lambda, Mean: mean}
		list = append(list, b.Activity)
	}
	if bs := spec.Bias; bs != nil {
		bias, err := newBias(bs)
		if err != nil {
			return nil, err
		}
		b.Bias = bias
		list = append(list, bias)
	}
	for _, c := range list {
		if err := m.Add(c); err != nil {
			return nil, err
		}
	}

	for _, o := range spec.Obstacles {
		seed.Fill(m, point(o.Lo), point(o.Hi), -1)
	}
	for i, c := range spec.Cells {
		if err := placeCells(m, c); err != nil {
			return nil, fmt.Errorf("cell entry %d: %w", i, err)
		}
	}
	if spec.Burnin > 0 {
		if m.BorderSize() == 0 {
			return nil, fmt.Errorf("%w: burn-in on a lattice without cells", cpm.ErrConfiguration)
		}
		m.Run(spec.Burnin)
	}
	return b, nil
}

// Advance runs one Monte Carlo step followed by the division and death
// events that are due at the new time.
func (b *Built) Advance() error {
	m := b.Model
	m.Step()
	t := m.Time()
	if d := b.Spec.Division; d != nil && t%max(d.Every, 1) == 0 {
		if _, err := manip.DivideCells2D(m, d.Kind, d.Probability, d.MinVolume); err != nil {
			return err
		}
	}
	if d := b.Spec.Death; d != nil && t%max(d.Every, 1) == 0 {
		manip.KillTooSmallCells(m, d.Kind, d.Target, d.Probability, d.LowerBound, d.DeadKind)
	}
	return nil
}

func newBias(bs *Bias) (*constraints.DirectionalBias, error) {
	bias, err := constraints.NewDirectionalBias(bs.Mode, bs.Lambda)
	if err != nil {
		return nil, err
	}
	switch bias.Mode {
	case constraints.Radial:
		bias.Target = point(bs.Target)
	case constraints.Linear:
		copy(bias.Direction[:], bs.Direction)
	case constraints.Field:
		src := point(bs.Source)
		decay := bs.Decay
		bias.Field = func(p cpm.Point) float64 {
			var d2 float64
			for k := range p {
				diff := float64(p[k] - src[k])
				d2 += diff * diff
			}
			return math.Exp(-decay * math.Sqrt(d2))
		}
	}
	return bias, nil
}

func placeCells(m *cpm.Model, c Cell) error {
	switch {
	case c.At != nil:
		seed.CellAt(m, c.Kind, point(c.At))
	case c.Box != nil:
		seed.Box(m, c.Kind, point(c.Box.Lo), point(c.Box.Hi))
	case c.Circle != nil:
		n := max(c.Count, 1)
		if _, err := seed.CellsInCircle(m, c.Kind, n, point(c.Circle.Center), c.Circle.Radius, c.Attempts); err != nil {
			return err
		}
	default:
		for k := 0; k < max(c.Count, 1); k++ {
			if _, err := seed.Cell(m, c.Kind, c.Attempts); err != nil {
				return err
			}
		}
	}
	return nil
}
