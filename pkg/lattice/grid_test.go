package lattice

import (
	"errors"
	"slices"
	"testing"
)

func mustGrid(t *testing.T, extents []int, torus ...bool) *Grid {
	t.Helper()
	g, err := New(extents, torus)
	if err != nil {
		t.Fatalf("New(%v): %v", extents, err)
	}
	return g
}

func TestNewRejectsBadShapes(t *testing.T) {
	cases := []struct {
		name    string
		extents []int
		torus   []bool
	}{
		{"one axis", []int{10}, nil},
		{"four axes", []int{4, 4, 4, 4}, nil},
		{"zero extent", []int{10, 0}, nil},
		{"too many bits", []int{1 << 16, 1 << 16, 2}, nil},
		{"torus mismatch", []int{8, 8}, []bool{true, false, true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.extents, tc.torus)
			if !errors.Is(err, ErrConfiguration) {
				t.Fatalf("expected configuration error, got %v", err)
			}
		})
	}
}

func TestPowerOfTwoExtentsUseExactBits(t *testing.T) {
	g, err := New([]int{1024, 1024}, nil)
	if err != nil {
		t.Fatalf("20-bit lattice rejected: %v", err)
	}
	if got := g.PointToIndex(Point{1023, 1023}); got != 1<<20-1 {
		t.Fatalf("expected last index %d, got %d", 1<<20-1, got)
	}
}

func TestIndexRoundTrip(t *testing.T) {
	for _, extents := range [][]int{{7, 5}, {16, 9}, {5, 6, 7}, {3, 33, 2}} {
		g := mustGrid(t, extents)
		seen := map[Index]bool{}
		count := 0
		for i := range g.Indices() {
			p := g.IndexToPoint(i)
			if !g.Contains(p) {
				t.Fatalf("%v: index %d decodes off-lattice to %v", extents, i, p)
			}
			if got := g.PointToIndex(p); got != i {
				t.Fatalf("%v: round trip %d -> %v -> %d", extents, i, p, got)
			}
			if seen[i] {
				t.Fatalf("%v: index %d emitted twice", extents, i)
			}
			seen[i] = true
			count++
		}
		if count != g.Size() {
			t.Fatalf("%v: enumerated %d pixels, expected %d", extents, count, g.Size())
		}
	}
}

func TestAxisZeroIsMostSignificant(t *testing.T) {
	g := mustGrid(t, []int{10, 10})
	// 10 needs 4 bits per axis.
	if got := g.PointToIndex(Point{1, 0}); got != 16 {
		t.Fatalf("expected (1,0) -> 16, got %d", got)
	}
	if got := g.PointToIndex(Point{0, 3}); got != 3 {
		t.Fatalf("expected (0,3) -> 3, got %d", got)
	}
}

func TestTorusNeighborCountAndSymmetry(t *testing.T) {
	for _, extents := range [][]int{{6, 5}, {4, 5, 6}} {
		g := mustGrid(t, extents)
		want := 8
		if len(extents) == 3 {
			want = 26
		}
		if g.NumNeighbors() != want {
			t.Fatalf("%v: NumNeighbors=%d, expected %d", extents, g.NumNeighbors(), want)
		}
		var buf, back []Index
		for i := range g.Indices() {
			buf = g.Neighbors(i, buf[:0])
			if len(buf) != want {
				t.Fatalf("%v: pixel %v has %d neighbors, expected %d", extents, g.IndexToPoint(i), len(buf), want)
			}
			for _, j := range buf {
				if !g.Contains(g.IndexToPoint(j)) {
					t.Fatalf("%v: neighbor %d of %d is off-lattice", extents, j, i)
				}
				back = g.Neighbors(j, back[:0])
				if !slices.Contains(back, i) {
					t.Fatalf("%v: %v is a neighbor of %v but not vice versa", extents, g.IndexToPoint(j), g.IndexToPoint(i))
				}
			}
		}
	}
}

func TestNeighborsMatchCoordinateArithmetic(t *testing.T) {
	g := mustGrid(t, []int{5, 7}, true, false)
	var buf []Index
	for i := range g.Indices() {
		p := g.IndexToPoint(i)
		var want []Index
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				if dx == 0 && dy == 0 {
					continue
				}
				q, ok := g.Wrap(Point{p[0] + dx, p[1] + dy})
				if !ok {
					continue
				}
				want = append(want, g.PointToIndex(q))
			}
		}
		buf = g.Neighbors(i, buf[:0])
		if !slices.Equal(buf, want) {
			t.Fatalf("neighbors of %v = %v, expected %v", p, buf, want)
		}
	}
}

func TestNonTorusCornerNeighbors(t *testing.T) {
	g := mustGrid(t, []int{4, 4, 4}, false)
	n := g.Neighbors(g.PointToIndex(Point{0, 0, 0}), nil)
	if len(n) != 7 {
		t.Fatalf("3D corner should have 7 neighbors, got %d", len(n))
	}
	n = g.Neighbors(g.PointToIndex(Point{0, 2, 2}), nil)
	if len(n) != 17 {
		t.Fatalf("3D face pixel should have 17 neighbors, got %d", len(n))
	}
}

func TestNeighborOrderTranslationInvariant(t *testing.T) {
	g := mustGrid(t, []int{9, 9})
	delta := func(a Index, b Index) [3]float64 {
		return g.Displacement(g.IndexToPoint(a), g.IndexToPoint(b))
	}
	ref := g.PointToIndex(Point{4, 4})
	refN := g.Neighbors(ref, nil)
	for _, p := range []Point{{0, 0}, {8, 3}, {2, 8}} {
		i := g.PointToIndex(p)
		n := g.Neighbors(i, nil)
		for k := range n {
			if delta(i, n[k]) != delta(ref, refN[k]) {
				t.Fatalf("neighbor %d of %v has offset %v, expected %v", k, p, delta(i, n[k]), delta(ref, refN[k]))
			}
		}
	}
}

func TestPixelsSkipsBackground(t *testing.T) {
	g := mustGrid(t, []int{5, 5})
	g.Set(g.PointToIndex(Point{1, 2}), 3)
	g.Set(g.PointToIndex(Point{4, 4}), -1)

	got := map[Point]CellID{}
	for p, id := range g.Pixels() {
		got[p] = id
	}
	if len(got) != 2 || got[Point{1, 2}] != 3 || got[Point{4, 4}] != -1 {
		t.Fatalf("unexpected pixels %v", got)
	}
	// Restartable.
	n := 0
	for range g.Pixels() {
		n++
	}
	if n != 2 {
		t.Fatalf("second pass yielded %d pixels", n)
	}
}

func TestWrapAndDisplacement(t *testing.T) {
	g := mustGrid(t, []int{10, 10}, true, false)
	if p, ok := g.Wrap(Point{-1, 3}); !ok || p != (Point{9, 3}) {
		t.Fatalf("wrap on torus axis gave %v %v", p, ok)
	}
	if _, ok := g.Wrap(Point{3, 10}); ok {
		t.Fatal("expected wrap to fail on bounded axis")
	}
	d := g.Displacement(Point{9, 5}, Point{0, 6})
	if d[0] != 1 || d[1] != 1 {
		t.Fatalf("expected minimum-image displacement (1,1), got %v", d)
	}
}
