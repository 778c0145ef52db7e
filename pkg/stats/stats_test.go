package stats

import (
	"math"
	"slices"
	"testing"

	"cellpotts/pkg/constraints"
	"cellpotts/pkg/cpm"
	"cellpotts/pkg/seed"
)

func newModel(t *testing.T, torus bool, extents ...int) *cpm.Model {
	t.Helper()
	m, err := cpm.New(cpm.Config{Extents: extents, Torus: []bool{torus}, Seed: 9, Temperature: 1})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func near(a, b Vec) bool {
	for d := range a {
		if math.Abs(a[d]-b[d]) > 1e-9 {
			return false
		}
	}
	return true
}

func TestCentroidOfBox(t *testing.T) {
	m := newModel(t, false, 20, 20)
	id := seed.Box(m, 1, cpm.Point{2, 4}, cpm.Point{6, 7})
	px := CellPixels(m)[id]
	if len(px) != 12 {
		t.Fatalf("expected 12 pixels, got %d", len(px))
	}
	want := Vec{3.5, 5}
	if c := Centroid(px); !near(c, want) {
		t.Fatalf("centroid %v, want %v", c, want)
	}
	if c := CentroidTorus(m, px); !near(c, want) {
		t.Fatalf("torus centroid %v, want %v", c, want)
	}
}

func TestCentroidAcrossTorusEdge(t *testing.T) {
	m := newModel(t, true, 20, 20)
	id := seed.Box(m, 1, cpm.Point{18, 10}, cpm.Point{22, 11})
	c := Centroids(m)[id]
	// Pixels at x = 18, 19, 0, 1 are centred on the seam.
	if !near(c, Vec{19.5, 10}) {
		t.Fatalf("centroid %v, want [19.5 10 0]", c)
	}
}

func TestAxisStats(t *testing.T) {
	px := []cpm.Point{{1, 0}, {2, 0}, {3, 0}, {4, 0}}
	mean, variance := AxisStats(px, 0)
	if mean != 2.5 || math.Abs(variance-5.0/3) > 1e-12 {
		t.Fatalf("mean %v variance %v", mean, variance)
	}
}

func TestConnectedness(t *testing.T) {
	m := newModel(t, false, 20, 20)
	whole := seed.Box(m, 1, cpm.Point{1, 1}, cpm.Point{4, 4})
	split := seed.Box(m, 1, cpm.Point{10, 10}, cpm.Point{13, 13})
	// Cutting the middle column leaves two columns of three pixels.
	for y := 10; y < 13; y++ {
		m.SetPixelAt(cpm.Point{11, y}, cpm.Background)
	}
	idx := CellIndices(m)
	if sizes := ConnectedComponents(m, split, idx[split]); len(sizes) != 2 {
		t.Fatalf("expected 2 pieces, got %v", sizes)
	}
	c := Connectedness(m)
	if c[whole] != 1 {
		t.Fatalf("connected cell scored %v", c[whole])
	}
	if want := 0.5; math.Abs(c[split]-want) > 1e-12 {
		t.Fatalf("split cell scored %v, want %v", c[split], want)
	}
}

func TestPercentageActive(t *testing.T) {
	m := newModel(t, true, 10, 10)
	act := &constraints.Activity{Max: []int{0, 2}, Lambda: []float64{0, 1}}
	if err := m.Add(act); err != nil {
		t.Fatal(err)
	}
	id := seed.Box(m, 1, cpm.Point{2, 2}, cpm.Point{4, 4})
	act.OnStepComplete()
	m.SetPixelAt(cpm.Point{4, 2}, id)
	got := PercentageActive(m, act, 1)
	if got[id] != 20 {
		t.Fatalf("expected 20%% active, got %v", got[id])
	}
}

func TestCellsOnNetworkAndNeighbors(t *testing.T) {
	m := newModel(t, false, 12, 12)
	for y := 0; y < 12; y++ {
		m.SetPixelAt(cpm.Point{6, y}, -1)
	}
	touching := seed.Box(m, 1, cpm.Point{4, 4}, cpm.Point{6, 6})
	far := seed.Box(m, 1, cpm.Point{0, 0}, cpm.Point{2, 2})
	if got := CellsOnNetwork(m); !slices.Equal(got, []cpm.CellID{touching}) {
		t.Fatalf("cells on network %v, want [%d]", got, touching)
	}
	n := CellNeighbors(m, far)
	if n[touching] != 0 || n[cpm.Background] == 0 {
		t.Fatalf("unexpected neighbors of %d: %v", far, n)
	}
	if CellNeighbors(m, touching)[-1] != 6 {
		t.Fatalf("expected 6 contacts with the network, got %v", CellNeighbors(m, touching))
	}
}

func TestDistance(t *testing.T) {
	torus := newModel(t, true, 20, 20)
	if d := Distance(torus, Vec{19, 5}, Vec{1, 5}); math.Abs(d-2) > 1e-12 {
		t.Fatalf("distance across the seam = %v, want 2", d)
	}
	bounded := newModel(t, false, 20, 20)
	if d := Distance(bounded, Vec{19, 5}, Vec{1, 5}); math.Abs(d-18) > 1e-12 {
		t.Fatalf("bounded distance = %v, want 18", d)
	}
	if d := Distance(bounded, Vec{0, 0}, Vec{3, 4}); d != 5 {
		t.Fatalf("distance = %v, want 5", d)
	}
}
