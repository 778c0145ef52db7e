// Package config loads YAML model files and assembles runnable models from
// them.
package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"cellpotts/pkg/constraints"
	"cellpotts/pkg/cpm"
)

//go:embed schema.json
var schemaJSON string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiled() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("model.schema.json", schemaJSON)
	})
	return schema, schemaErr
}

// DefaultTemperature applies when a model file leaves temperature out.
const DefaultTemperature = 20

// Model is the on-disk description of a simulation.
type Model struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	Lattice     Lattice `yaml:"lattice"`
	Seed        uint64  `yaml:"seed"`
	Temperature float64 `yaml:"temperature"`
	// Kinds counts cell kinds including the background kind 0.
	Kinds  int `yaml:"kinds"`
	Burnin int `yaml:"burnin"`

	Adhesion    *Adhesion    `yaml:"adhesion"`
	Volume      *Weighted    `yaml:"volume"`
	Perimeter   *Weighted    `yaml:"perimeter"`
	Activity    *Activity    `yaml:"activity"`
	VolumeRange *VolumeRange `yaml:"volume_range"`
	Bias        *Bias        `yaml:"bias"`

	Division *Division `yaml:"division"`
	Death    *Death    `yaml:"death"`

	Obstacles []Box  `yaml:"obstacles"`
	Cells     []Cell `yaml:"cells"`
}

type Lattice struct {
	Extents []int  `yaml:"extents"`
	Torus   []bool `yaml:"torus"`
}

type Adhesion struct {
	J [][]float64 `yaml:"j"`
}

// Weighted holds a per-kind target and weight.
type Weighted struct {
	Target []float64 `yaml:"target"`
	Lambda []float64 `yaml:"lambda"`
}

type Activity struct {
	Max    []int     `yaml:"max"`
	Lambda []float64 `yaml:"lambda"`
	Mean   string    `yaml:"mean"`
}

type VolumeRange struct {
	Min []int `yaml:"min"`
	Max []int `yaml:"max"`
}

// Bias configures a directional bias. Target is used by the radial mode,
// Direction by the linear mode, and Source with Decay by the field mode,
// whose field is exp(-Decay·distance to Source).
type Bias struct {
	Mode      string    `yaml:"mode"`
	Lambda    []float64 `yaml:"lambda"`
	Target    []int     `yaml:"target"`
	Direction []float64 `yaml:"direction"`
	Source    []int     `yaml:"source"`
	Decay     float64   `yaml:"decay"`
}

// Division splits cells of Kind holding at least MinVolume pixels, each with
// the given probability, every Every steps. Only 2D lattices support it.
type Division struct {
	Kind        int     `yaml:"kind"`
	Probability float64 `yaml:"probability"`
	MinVolume   int     `yaml:"min_volume"`
	Every       int     `yaml:"every"`
}

// Death moves cells of Kind smaller than LowerBound·Target to DeadKind, each
// with the given probability, every Every steps. Target defaults to the
// kind's volume target.
type Death struct {
	Kind        int     `yaml:"kind"`
	Probability float64 `yaml:"probability"`
	Target      float64 `yaml:"target"`
	LowerBound  float64 `yaml:"lower_bound"`
	DeadKind    int     `yaml:"dead_kind"`
	Every       int     `yaml:"every"`
}

type Box struct {
	Lo []int `yaml:"lo"`
	Hi []int `yaml:"hi"`
}

type Circle struct {
	Center []int   `yaml:"center"`
	Radius float64 `yaml:"radius"`
}

// Cell seeds one or more cells. Exactly one placement applies: At and Box
// place a single cell, Circle places Count cells inside it, and with no
// placement Count cells go to random free pixels.
type Cell struct {
	Kind     int     `yaml:"kind"`
	Count    int     `yaml:"count"`
	At       []int   `yaml:"at"`
	Box      *Box    `yaml:"box"`
	Circle   *Circle `yaml:"circle"`
	Attempts int     `yaml:"attempts"`
}

// Load reads and validates a model file.
func Load(path string) (Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Model{}, err
	}
	return Parse(raw)
}

// Parse validates raw YAML against the model schema, decodes it and applies
// defaults and semantic checks.
func Parse(raw []byte) (Model, error) {
	var m Model
	if err := validateSchema(raw); err != nil {
		return m, fmt.Errorf("model.yaml: %w", err)
	}
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return m, fmt.Errorf("model.yaml: %w", err)
	}
	m.Normalize()
	if err := m.Validate(); err != nil {
		return m, fmt.Errorf("model.yaml: %w", err)
	}
	return m, nil
}

func validateSchema(raw []byte) error {
	s, err := compiled()
	if err != nil {
		return err
	}
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return err
	}
	// The validator expects the value shapes produced by encoding/json.
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", cpm.ErrConfiguration, err)
	}
	return nil
}

// Normalize fills in defaults: the temperature, the number of kinds (taken
// from the first per-kind list present) and the activity mean.
func (m *Model) Normalize() {
	m.Name = strings.TrimSpace(m.Name)
	if m.Temperature == 0 {
		m.Temperature = DefaultTemperature
	}
	if m.Kinds == 0 {
		switch {
		case m.Adhesion != nil:
			m.Kinds = len(m.Adhesion.J)
		case m.Volume != nil:
			m.Kinds = len(m.Volume.Target)
		case m.Perimeter != nil:
			m.Kinds = len(m.Perimeter.Target)
		case m.Activity != nil:
			m.Kinds = len(m.Activity.Max)
		case m.VolumeRange != nil:
			m.Kinds = len(m.VolumeRange.Min)
		case m.Bias != nil:
			m.Kinds = len(m.Bias.Lambda)
		default:
			m.Kinds = 2
		}
	}
	if d := m.Division; d != nil {
		d.Every = max(d.Every, 1)
		d.MinVolume = max(d.MinVolume, 2)
	}
	if d := m.Death; d != nil {
		d.Every = max(d.Every, 1)
		if d.Target == 0 && m.Volume != nil && d.Kind < len(m.Volume.Target) {
			d.Target = m.Volume.Target[d.Kind]
		}
		if d.LowerBound == 0 {
			d.LowerBound = 0.5
		}
	}
	if m.Activity != nil && m.Activity.Mean == "" {
		m.Activity.Mean = constraints.Geometric.String()
	}
}

// Validate checks what the schema cannot: per-kind list lengths, adhesion
// symmetry, bias parameters and that seeded cells fit the lattice.
func (m *Model) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", cpm.ErrConfiguration, fmt.Sprintf(format, args...)))
	}
	dim := len(m.Lattice.Extents)
	if dim != 2 && dim != 3 {
		fail("lattice needs 2 or 3 extents, got %d", dim)
	}
	if t := len(m.Lattice.Torus); t > 1 && t != dim {
		fail("torus lists %d axes for a %d-axis lattice", t, dim)
	}
	perKind := func(name string, n int) {
		if n != m.Kinds {
			fail("%s lists %d kinds, model has %d", name, n, m.Kinds)
		}
	}
	if a := m.Adhesion; a != nil {
		perKind("adhesion", len(a.J))
		for i, row := range a.J {
			if len(row) != len(a.J) {
				fail("adhesion row %d has %d entries", i, len(row))
				continue
			}
			for j := 0; j < i; j++ {
				if i < len(a.J[j]) && row[j] != a.J[j][i] {
					fail("adhesion is not symmetric at [%d][%d]", i, j)
				}
			}
		}
	}
	if v := m.Volume; v != nil {
		perKind("volume target", len(v.Target))
		perKind("volume lambda", len(v.Lambda))
	}
	if p := m.Perimeter; p != nil {
		perKind("perimeter target", len(p.Target))
		perKind("perimeter lambda", len(p.Lambda))
	}
	if a := m.Activity; a != nil {
		perKind("activity max", len(a.Max))
		perKind("activity lambda", len(a.Lambda))
		if _, err := constraints.ParseActivityMean(a.Mean); err != nil {
			errs = append(errs, err)
		}
	}
	if r := m.VolumeRange; r != nil {
		perKind("volume range min", len(r.Min))
		perKind("volume range max", len(r.Max))
		for k := range r.Min {
			if k < len(r.Max) && r.Max[k] > 0 && r.Min[k] > r.Max[k] {
				fail("volume range for kind %d is empty (%d > %d)", k, r.Min[k], r.Max[k])
			}
		}
	}
	if b := m.Bias; b != nil {
		perKind("bias lambda", len(b.Lambda))
		m.validateBias(b, dim, &errs)
	}
	if d := m.Division; d != nil {
		if dim != 2 {
			fail("division needs a 2D lattice")
		}
		if d.Kind >= m.Kinds {
			fail("division kind %d, model has kinds 1..%d", d.Kind, m.Kinds-1)
		}
	}
	if d := m.Death; d != nil {
		if d.Kind >= m.Kinds || d.DeadKind >= m.Kinds {
			fail("death kinds %d and %d, model has kinds 1..%d", d.Kind, d.DeadKind, m.Kinds-1)
		}
		if d.Target <= 0 {
			fail("death of kind %d needs a target volume", d.Kind)
		}
	}
	for i, o := range m.Obstacles {
		if len(o.Lo) != dim || len(o.Hi) != dim {
			fail("obstacle %d needs %d-axis corners", i, dim)
		}
	}
	for i, c := range m.Cells {
		if c.Kind < 1 || c.Kind >= m.Kinds {
			fail("cell entry %d has kind %d, model has kinds 1..%d", i, c.Kind, m.Kinds-1)
		}
		placements := 0
		if c.At != nil {
			placements++
			m.checkPoint(fmt.Sprintf("cell entry %d position", i), c.At, dim, &errs)
		}
		if c.Box != nil {
			placements++
			if len(c.Box.Lo) != dim || len(c.Box.Hi) != dim {
				fail("cell entry %d box needs %d-axis corners", i, dim)
			}
		}
		if c.Circle != nil {
			placements++
			m.checkPoint(fmt.Sprintf("cell entry %d circle center", i), c.Circle.Center, dim, &errs)
		}
		if placements > 1 {
			fail("cell entry %d has more than one placement", i)
		}
	}
	return errors.Join(errs...)
}

func (m *Model) validateBias(b *Bias, dim int, errs *[]error) {
	mode, err := constraints.ParseBiasMode(b.Mode)
	if err != nil {
		*errs = append(*errs, err)
		return
	}
	switch mode {
	case constraints.Radial:
		m.checkPoint("bias target", b.Target, dim, errs)
	case constraints.Linear:
		nonZero := false
		for _, v := range b.Direction {
			nonZero = nonZero || v != 0
		}
		if len(b.Direction) != dim || !nonZero {
			*errs = append(*errs, fmt.Errorf("%w: linear bias needs a non-zero %d-axis direction", cpm.ErrConfiguration, dim))
		}
	case constraints.Field:
		m.checkPoint("bias source", b.Source, dim, errs)
	case constraints.Custom:
		*errs = append(*errs, fmt.Errorf("%w: custom bias cannot be loaded from a file", cpm.ErrConfiguration))
	}
}

func (m *Model) checkPoint(what string, p []int, dim int, errs *[]error) {
	if len(p) != dim {
		*errs = append(*errs, fmt.Errorf("%w: %s needs %d coordinates", cpm.ErrConfiguration, what, dim))
		return
	}
	for d, v := range p {
		if v < 0 || v >= m.Lattice.Extents[d] {
			*errs = append(*errs, fmt.Errorf("%w: %s %v lies outside the lattice", cpm.ErrConfiguration, what, p))
			return
		}
	}
}

func point(v []int) cpm.Point {
	var p cpm.Point
	copy(p[:], v)
	return p
}
