package potts

import (
	"slices"
	"testing"

	"cellpotts/internal/core"
	"cellpotts/pkg/cpm"
)

func TestPresetsRegistered(t *testing.T) {
	names := Presets()
	for _, want := range []string{"act", "act3d", "chemotaxis", "single", "sorting"} {
		if !slices.Contains(names, want) {
			t.Fatalf("preset %q missing from %v", want, names)
		}
		if _, ok := core.Sims()[want]; !ok {
			t.Fatalf("preset %q not registered with core", want)
		}
	}
}

func TestEveryPresetBuildsAndSteps(t *testing.T) {
	for _, name := range Presets() {
		if name == "act3d" {
			continue
		}
		t.Run(name, func(t *testing.T) {
			sim := core.Sims()[name](nil)
			size := sim.Size()
			if got := len(sim.Cells()); got != size.W*size.H {
				t.Fatalf("cells length %d, want %d", got, size.W*size.H)
			}
			ps := sim.(*Sim)
			before := ps.Model().Time()
			sim.Step()
			if ps.Model().Time() != before+1 {
				t.Fatalf("time %d after one step from %d", ps.Model().Time(), before)
			}
			if err := ps.Model().CheckInvariants(); err != nil {
				t.Fatalf("invariants: %v", err)
			}
		})
	}
}

func TestCellsEncodeKinds(t *testing.T) {
	spec, _ := Preset("chemotaxis")
	s, err := New(spec)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m := s.Model()
	f := s.Frame()
	var cells, obstacles int
	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			id := m.PixelAt(cpm.Point{x, y})
			code := s.Cells()[f.Index(x, y)]
			switch {
			case id < 0:
				obstacles++
				if code != ObstacleCode {
					t.Fatalf("obstacle at (%d,%d) has code %d", x, y, code)
				}
			case id > 0:
				cells++
				if int(code) != m.CellKind(id) {
					t.Fatalf("cell pixel at (%d,%d) has code %d, kind %d", x, y, code, m.CellKind(id))
				}
			default:
				if code != 0 {
					t.Fatalf("background at (%d,%d) has code %d", x, y, code)
				}
				if f.Edges[f.Index(x, y)] {
					t.Fatalf("background pixel marked as edge")
				}
			}
		}
	}
	if obstacles != 2*4*35 {
		t.Fatalf("obstacle pixels = %d, want %d", obstacles, 2*4*35)
	}
	if cells == 0 {
		t.Fatalf("no cell pixels in frame")
	}
}

func TestActivityLevels(t *testing.T) {
	spec, _ := Preset("act")
	s, err := New(spec)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Step()
	f := s.Frame()
	var active bool
	for k, lvl := range f.Levels {
		if lvl < 0 || lvl > 1 {
			t.Fatalf("level %v out of range at %d", lvl, k)
		}
		if lvl > 0 {
			active = true
			if f.Codes[k] == 0 {
				t.Fatalf("background pixel %d carries activity", k)
			}
		}
	}
	if !active {
		t.Fatalf("no activity after a step")
	}
}

func TestFrameFollowsAdvance(t *testing.T) {
	spec, _ := Preset("act")
	s, err := New(spec)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	built := s.Built()
	for k := 0; k < 20; k++ {
		if err := built.Advance(); err != nil {
			t.Fatalf("Advance: %v", err)
		}
	}
	s.Refresh()
	f, m := s.Frame(), s.Model()
	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			want := int32(m.PixelAt(cpm.Point{x, y}))
			if got := f.IDs[f.Index(x, y)]; got != want {
				t.Fatalf("frame id at (%d,%d) = %d, model holds %d", x, y, got, want)
			}
		}
	}
}

func TestFromMapOverrides(t *testing.T) {
	base, _ := Preset("single")
	spec, steps := FromMap(base, map[string]string{
		"w": "80", "h": "60", "seed": "9", "temperature": "35", "steps": "4",
	})
	if spec.Lattice.Extents[0] != 80 || spec.Lattice.Extents[1] != 60 {
		t.Fatalf("extents = %v", spec.Lattice.Extents)
	}
	if spec.Seed != 9 || spec.Temperature != 35 || steps != 4 {
		t.Fatalf("seed %d temperature %v steps %d", spec.Seed, spec.Temperature, steps)
	}
	if base.Lattice.Extents[0] != 50 {
		t.Fatalf("override leaked into the preset: %v", base.Lattice.Extents)
	}

	spec, steps = FromMap(base, map[string]string{"w": "x", "temperature": "-1", "steps": "0"})
	if spec.Lattice.Extents[0] != 50 || spec.Temperature != base.Temperature || steps != 1 {
		t.Fatalf("invalid values were applied: %v %v %d", spec.Lattice.Extents, spec.Temperature, steps)
	}
}

func TestFromMapRejectsInvalidModel(t *testing.T) {
	base, _ := Preset("chemotaxis")
	// The field source sits at x=140 and would fall off a narrower lattice.
	spec, _ := FromMap(base, map[string]string{"w": "100"})
	if spec.Lattice.Extents[0] != 160 {
		t.Fatalf("invalid override kept: %v", spec.Lattice.Extents)
	}
}

func TestParameterSetters(t *testing.T) {
	sim := core.Sims()["single"](map[string]string{"steps": "3"}).(*Sim)
	if p, ok := sim.Parameters().Lookup("steps"); !ok || p.Value != "3" {
		t.Fatalf("steps parameter = %+v", p)
	}
	if !sim.SetFloatParameter("temperature", 50) {
		t.Fatalf("temperature rejected")
	}
	if sim.Model().Temperature() != 50 {
		t.Fatalf("temperature not applied")
	}
	if sim.SetFloatParameter("temperature", 0) {
		t.Fatalf("zero temperature accepted")
	}
	if sim.SetIntParameter("steps", 0) || sim.SetIntParameter("slice", 1) {
		t.Fatalf("invalid int parameter accepted")
	}
	sim.Step()
	if sim.Model().Time() != 3 {
		t.Fatalf("time = %d after one frame of 3 MCS", sim.Model().Time())
	}
	if len(sim.ParameterControls()) != 2 {
		t.Fatalf("2D sim exposes %d controls", len(sim.ParameterControls()))
	}
}

func TestResetReproducible(t *testing.T) {
	spec, _ := Preset("act")
	a, err := New(spec)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, err := New(spec)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for k := 0; k < 3; k++ {
		a.Step()
	}
	a.Reset(int64(spec.Seed))
	for k := 0; k < 2; k++ {
		a.Step()
		b.Step()
	}
	if !slices.Equal(a.Cells(), b.Cells()) {
		t.Fatalf("reset with the same seed diverged")
	}
}

func TestSliceControl(t *testing.T) {
	spec, _ := Preset("act3d")
	s, err := New(spec)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p, ok := s.Parameters().Lookup("slice"); !ok || p.Value != "24" {
		t.Fatalf("slice parameter = %+v", p)
	}
	count := func() int {
		n := 0
		for _, c := range s.Cells() {
			if c != 0 {
				n++
			}
		}
		return n
	}
	if count() != 100 {
		t.Fatalf("middle slice holds %d cell pixels, want 100", count())
	}
	if !s.SetIntParameter("slice", 0) {
		t.Fatalf("slice 0 rejected")
	}
	if count() != 0 {
		t.Fatalf("slice 0 holds %d cell pixels", count())
	}
	if s.SetIntParameter("slice", 48) {
		t.Fatalf("slice beyond the lattice accepted")
	}
}
