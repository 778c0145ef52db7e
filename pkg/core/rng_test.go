package core

import "testing"

func TestRNGDeterministic(t *testing.T) {
	a := NewRNG(7)
	b := NewRNG(7)
	for i := 0; i < 100; i++ {
		if x, y := a.Float64(), b.Float64(); x != y {
			t.Fatalf("draw %d differs: %f vs %f", i, x, y)
		}
		if x, y := a.IntN(13), b.IntN(13); x != y {
			t.Fatalf("int draw %d differs: %d vs %d", i, x, y)
		}
	}
	if a.Seed() != 7 {
		t.Fatalf("expected seed 7, got %d", a.Seed())
	}
}

func TestBetweenInclusive(t *testing.T) {
	r := NewRNG(1)
	seen := map[int]bool{}
	for i := 0; i < 2000; i++ {
		v := r.Between(3, 6)
		if v < 3 || v > 6 {
			t.Fatalf("value %d outside [3,6]", v)
		}
		seen[v] = true
	}
	for v := 3; v <= 6; v++ {
		if !seen[v] {
			t.Fatalf("value %d never drawn", v)
		}
	}
	if v := r.Between(5, 5); v != 5 {
		t.Fatalf("degenerate range returned %d", v)
	}
}
