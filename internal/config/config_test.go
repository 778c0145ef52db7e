package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cellpotts/pkg/cpm"
)

const sample = `
name: sample
lattice:
  extents: [40, 30]
seed: 4
temperature: 15
adhesion:
  j: [[0, 20], [20, 100]]
volume:
  target: [0, 50]
  lambda: [0, 10]
perimeter:
  target: [0, 40]
  lambda: [0, 1]
activity:
  max: [0, 20]
  lambda: [0, 100]
  mean: arithmetic
volume_range:
  min: [0, 2]
  max: [0, 0]
bias:
  mode: linear
  lambda: [0, 5]
  direction: [1, 0]
obstacles:
  - lo: [0, 0]
    hi: [40, 1]
cells:
  - kind: 1
    box: {lo: [5, 5], hi: [12, 12]}
  - kind: 1
    count: 3
    circle: {center: [25, 15], radius: 6}
burnin: 2
`

func TestParseAndBuild(t *testing.T) {
	spec, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if spec.Kinds != 2 || spec.Name != "sample" {
		t.Fatalf("normalized kinds=%d name=%q", spec.Kinds, spec.Name)
	}
	b, err := Build(spec, cpm.WithDebug(true))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	m := b.Model
	if m.NumCells() != 4 {
		t.Fatalf("expected 4 cells, got %d", m.NumCells())
	}
	if got := len(m.Constraints()); got != 7 {
		t.Fatalf("expected 7 constraints, got %v", m.Constraints())
	}
	if m.Time() != 2 {
		t.Fatalf("burn-in ran %d steps", m.Time())
	}
	if m.PixelAt(cpm.Point{7, 0}) != -1 {
		t.Fatal("obstacle row missing")
	}
	if b.Activity == nil || b.Perimeter == nil || b.Bias == nil {
		t.Fatal("constraint handles missing")
	}
	if err := m.CheckInvariants(); err != nil {
		t.Fatal(err)
	}
}

func TestDefaults(t *testing.T) {
	spec, err := Parse([]byte("lattice: {extents: [10, 10]}\ncells: [{kind: 1}]\n"))
	if err != nil {
		t.Fatal(err)
	}
	if spec.Temperature != DefaultTemperature || spec.Kinds != 2 {
		t.Fatalf("defaults not applied: %+v", spec)
	}
	b, err := Build(spec)
	if err != nil {
		t.Fatal(err)
	}
	if b.Model.PixelAt(cpm.Point{5, 5}) != 1 {
		t.Fatal("random seeding should start at the midpoint")
	}
}

func TestSchemaRejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":     "lattice: {extents: [10, 10]}\ncolour: red\n",
		"missing lattice": "seed: 3\n",
		"1D lattice":      "lattice: {extents: [10]}\n",
		"negative temp":   "lattice: {extents: [10, 10]}\ntemperature: -1\n",
		"bad mean":        "lattice: {extents: [10, 10]}\nactivity: {max: [0, 1], lambda: [0, 1], mean: median}\n",
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); !errors.Is(err, cpm.ErrConfiguration) {
			t.Fatalf("%s: expected configuration error, got %v", name, err)
		}
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"asymmetric adhesion": "lattice: {extents: [10, 10]}\nadhesion: {j: [[0, 1], [2, 0]]}\n",
		"kind count":          "lattice: {extents: [10, 10]}\nkinds: 3\nvolume: {target: [0, 5], lambda: [0, 1]}\n",
		"unknown bias":        "lattice: {extents: [10, 10]}\nbias: {mode: spiral, lambda: [0, 1]}\n",
		"custom bias":         "lattice: {extents: [10, 10]}\nbias: {mode: custom, lambda: [0, 1]}\n",
		"zero direction":      "lattice: {extents: [10, 10]}\nbias: {mode: linear, lambda: [0, 1], direction: [0, 0]}\n",
		"cell kind":           "lattice: {extents: [10, 10]}\ncells: [{kind: 2}]\n",
		"off lattice":         "lattice: {extents: [10, 10]}\ncells: [{kind: 1, at: [10, 3]}]\n",
		"two placements":      "lattice: {extents: [10, 10]}\ncells: [{kind: 1, at: [1, 1], box: {lo: [0, 0], hi: [2, 2]}}]\n",
		"3D division":         "lattice: {extents: [10, 10, 10]}\ndivision: {kind: 1, probability: 0.5}\n",
		"death kind":          "lattice: {extents: [10, 10]}\ndeath: {kind: 1, probability: 1, dead_kind: 4, target: 10}\n",
		"death target":        "lattice: {extents: [10, 10]}\ndeath: {kind: 1, probability: 1, dead_kind: 1}\n",
	}
	for name, doc := range cases {
		_, err := Parse([]byte(doc))
		if !errors.Is(err, cpm.ErrConfiguration) {
			t.Fatalf("%s: expected configuration error, got %v", name, err)
		}
		if !strings.HasPrefix(err.Error(), "model.yaml: ") {
			t.Fatalf("%s: error lacks file prefix: %v", name, err)
		}
	}
}

func TestLoadFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	spec, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if spec.Bias == nil || spec.Bias.Mode != "linear" {
		t.Fatalf("bias not loaded: %+v", spec.Bias)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestBuildIsReproducible(t *testing.T) {
	spec, err := Parse([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	snapshot := func() []cpm.CellID {
		b, err := Build(spec)
		if err != nil {
			t.Fatal(err)
		}
		b.Model.Run(5)
		var out []cpm.CellID
		for i := range b.Model.Grid().Indices() {
			out = append(out, b.Model.Pixel(i))
		}
		return out
	}
	a, c := snapshot(), snapshot()
	for k := range a {
		if a[k] != c[k] {
			t.Fatalf("runs diverge at pixel %d", k)
		}
	}
}

const colony = `
lattice: {extents: [30, 30]}
kinds: 3
seed: 2
adhesion: {j: [[0, 0, 0], [0, 0, 0], [0, 0, 0]]}
volume: {target: [0, 100, 0], lambda: [0, 50, 0]}
division: {kind: 1, probability: 1, min_volume: 50}
death: {kind: 1, probability: 1, lower_bound: 0.9, dead_kind: 2}
cells:
  - kind: 1
    box: {lo: [10, 10], hi: [20, 20]}
`

func TestDivisionAndDeathDefaults(t *testing.T) {
	spec, err := Parse([]byte(colony))
	if err != nil {
		t.Fatal(err)
	}
	if spec.Division.Every != 1 || spec.Death.Every != 1 {
		t.Fatalf("every not defaulted: %+v %+v", spec.Division, spec.Death)
	}
	if spec.Death.Target != 100 {
		t.Fatalf("death target = %v, want the kind's volume target", spec.Death.Target)
	}
}

func TestAdvanceRunsEvents(t *testing.T) {
	spec, err := Parse([]byte(colony))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Build(spec)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Advance(); err != nil {
		t.Fatal(err)
	}
	m := b.Model
	if m.Time() != 1 || m.NumCells() != 2 {
		t.Fatalf("time %d cells %d after one advance", m.Time(), m.NumCells())
	}
	// Both halves fall below 0.9 of the target and die in the same step.
	for id := range m.CellIDs() {
		if m.CellKind(id) != 2 {
			t.Fatalf("cell %d of volume %d has kind %d", id, m.Volume(id), m.CellKind(id))
		}
	}
	if err := m.CheckInvariants(); err != nil {
		t.Fatal(err)
	}
}
