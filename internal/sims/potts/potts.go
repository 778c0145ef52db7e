// Package potts adapts Cellular Potts models to the viewer's Sim contract and
// registers the bundled scenarios.
package potts

import (
	"fmt"
	"log/slog"
	"strings"

	"cellpotts/internal/config"
	"cellpotts/internal/core"
	"cellpotts/pkg/cpm"
)

const (
	// ObstacleCode is the palette code of impassable pixels.
	ObstacleCode = 255
	maxKindCode  = ObstacleCode - 1
)

// Sim runs a model built from a config.Model and projects one lattice plane
// into a display frame.
type Sim struct {
	spec  config.Model
	built *config.Built
	opts  []cpm.Option

	frame *core.Frame
	steps int
	slice int
}

// New builds the model described by spec.
func New(spec config.Model, opts ...cpm.Option) (*Sim, error) {
	s := &Sim{spec: spec, opts: opts, steps: 1}
	if err := s.rebuild(); err != nil {
		return nil, err
	}
	ext := spec.Lattice.Extents
	s.frame = core.NewFrame(ext[0], ext[1])
	if len(ext) == 3 {
		s.slice = ext[2] / 2
	}
	s.Refresh()
	return s, nil
}

func (s *Sim) rebuild() error {
	b, err := config.Build(s.spec, s.opts...)
	if err != nil {
		return fmt.Errorf("%s: %w", s.Name(), err)
	}
	s.built = b
	return nil
}

// Name identifies the scenario.
func (s *Sim) Name() string {
	if s.spec.Name == "" {
		return "potts"
	}
	return s.spec.Name
}

// Size returns the dimensions of the displayed plane.
func (s *Sim) Size() core.Size {
	ext := s.spec.Lattice.Extents
	return core.Size{W: ext[0], H: ext[1]}
}

// Load builds a sim from a YAML model file.
func Load(path string, opts ...cpm.Option) (*Sim, error) {
	spec, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return New(spec, opts...)
}

// Reset rebuilds the model from its description with a new seed. If the
// rebuild fails the current model is kept.
func (s *Sim) Reset(seed int64) {
	prev := s.spec.Seed
	s.spec.Seed = uint64(seed)
	if err := s.rebuild(); err != nil {
		slog.Warn("reset failed", "sim", s.Name(), "err", err)
		s.spec.Seed = prev
		return
	}
	s.Refresh()
}

// Step advances the model by the configured number of Monte Carlo steps,
// running division and death events as they fall due.
func (s *Sim) Step() {
	m := s.built.Model
	for k := 0; k < s.steps && m.BorderSize() > 0; k++ {
		if err := s.built.Advance(); err != nil {
			slog.Warn("step failed", "sim", s.Name(), "err", err)
			break
		}
	}
	s.Refresh()
}

// Cells returns the palette codes of the displayed plane: 0 for background,
// the cell kind for cells and ObstacleCode for impassable pixels.
func (s *Sim) Cells() []uint8 { return s.frame.Codes }

// Frame exposes the overlay layers: activity levels and cell edges.
func (s *Sim) Frame() *core.Frame { return s.frame }

// Model returns the running model.
func (s *Sim) Model() *cpm.Model { return s.built.Model }

// Built returns the model together with its constraint handles.
func (s *Sim) Built() *config.Built { return s.built }

// Spec returns the description the model was built from.
func (s *Sim) Spec() config.Model { return s.spec }

// Refresh redraws the frame from the model. Callers that advance the model
// through Built must call it before reading Cells or Frame.
func (s *Sim) Refresh() {
	m := s.built.Model
	act := s.built.Activity
	f := s.frame
	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			k := f.Index(x, y)
			i := m.PointToIndex(cpm.Point{x, y, s.slice})
			id := m.Pixel(i)
			f.IDs[k] = int32(id)
			f.Edges[k] = id != cpm.Background && m.IsBorder(i)
			f.Levels[k] = 0
			switch {
			case id == cpm.Background:
				f.Codes[k] = 0
			case id < 0:
				f.Codes[k] = ObstacleCode
			default:
				kind := m.CellKind(id)
				f.Codes[k] = uint8(min(kind, maxKindCode))
				if act != nil && kind < len(act.Max) && act.Max[kind] > 0 {
					f.Levels[k] = float32(act.At(i)) / float32(act.Max[kind])
				}
			}
		}
	}
}

// Parameters reports the model's current settings.
func (s *Sim) Parameters() core.ParameterSnapshot {
	m := s.built.Model
	ext := make([]string, len(s.spec.Lattice.Extents))
	for k, e := range s.spec.Lattice.Extents {
		ext[k] = fmt.Sprint(e)
	}
	lattice := []core.Parameter{
		core.TextParam("extents", "Extents", strings.Join(ext, "x")),
		core.IntParam("kinds", "Kinds", s.spec.Kinds),
		core.IntParam("seed", "Seed", int(s.spec.Seed)),
	}
	if m.Dim() == 3 {
		lattice = append(lattice, core.IntParam("slice", "Z slice", s.slice))
	}
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{
		{Name: "Lattice", Params: lattice},
		{Name: "Dynamics", Params: []core.Parameter{
			core.FloatParam("temperature", "Temperature", m.Temperature()),
			core.IntParam("steps", "MCS per frame", s.steps),
			core.IntParam("time", "MCS", m.Time()),
			core.IntParam("cells", "Cells", m.NumCells()),
			core.IntParam("border", "Border pixels", m.BorderSize()),
		}},
	}}
}

// ParameterControls lists the settings adjustable while running.
func (s *Sim) ParameterControls() []core.ParameterControl {
	controls := []core.ParameterControl{
		{Key: "temperature", Label: "Temperature", Type: core.ParamTypeFloat, Step: 1, Min: 1, HasMin: true, Max: 500, HasMax: true},
		{Key: "steps", Label: "MCS per frame", Type: core.ParamTypeInt, Step: 1, Min: 1, HasMin: true, Max: 100, HasMax: true},
	}
	if ext := s.spec.Lattice.Extents; len(ext) == 3 {
		controls = append(controls, core.ParameterControl{
			Key: "slice", Label: "Z slice", Type: core.ParamTypeInt, Step: 1, Min: 0, HasMin: true, Max: float64(ext[2] - 1), HasMax: true,
		})
	}
	return controls
}

// SetFloatParameter applies a HUD change.
func (s *Sim) SetFloatParameter(key string, value float64) bool {
	if key != "temperature" {
		return false
	}
	if err := s.built.Model.SetTemperature(value); err != nil {
		return false
	}
	s.spec.Temperature = value
	return true
}

// SetIntParameter applies a HUD change.
func (s *Sim) SetIntParameter(key string, value int) bool {
	switch key {
	case "steps":
		if value < 1 {
			return false
		}
		s.steps = value
		return true
	case "slice":
		ext := s.spec.Lattice.Extents
		if len(ext) != 3 || value < 0 || value >= ext[2] {
			return false
		}
		s.slice = value
		s.Refresh()
		return true
	}
	return false
}
