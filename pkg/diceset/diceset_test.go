package diceset

import (
	"errors"
	"math"
	"testing"

	"cellpotts/pkg/core"
)

func TestInsertRemoveMatchesReference(t *testing.T) {
	rng := core.NewRNG(11)
	s := New[uint32](rng)
	ref := map[uint32]bool{}

	for i := 0; i < 5000; i++ {
		v := uint32(rng.IntN(64))
		if rng.IntN(3) == 0 {
			s.Remove(v)
			delete(ref, v)
		} else {
			s.Insert(v)
			ref[v] = true
		}
		if s.Len() != len(ref) {
			t.Fatalf("op %d: size %d, expected %d", i, s.Len(), len(ref))
		}
	}
	for v := uint32(0); v < 64; v++ {
		if s.Contains(v) != ref[v] {
			t.Fatalf("membership of %d = %v, expected %v", v, s.Contains(v), ref[v])
		}
	}
	for i := 0; i < s.Len(); i++ {
		v := s.At(i)
		if s.indices[v] != i {
			t.Fatalf("reverse index for %d is %d, expected %d", v, s.indices[v], i)
		}
	}
}

func TestRemoveAbsentAndDuplicateInsert(t *testing.T) {
	s := New[int](core.NewRNG(1))
	s.Remove(4)
	s.Insert(4)
	s.Insert(4)
	if s.Len() != 1 {
		t.Fatalf("expected size 1 after duplicate insert, got %d", s.Len())
	}
	s.Insert(5)
	s.Remove(4)
	if s.Contains(4) || !s.Contains(5) || s.Len() != 1 {
		t.Fatalf("unexpected state after removal: len=%d", s.Len())
	}
	s.Remove(5)
	if s.Len() != 0 {
		t.Fatalf("expected empty set, got %d", s.Len())
	}
}

func TestSampleUniform(t *testing.T) {
	rng := core.NewRNG(42)
	s := New[int](rng)
	const members = 10
	for v := 0; v < members; v++ {
		s.Insert(v * 3)
	}
	s.Remove(9)
	s.Insert(100)

	counts := map[int]int{}
	const trials = 100000
	for i := 0; i < trials; i++ {
		v := s.Sample()
		if !s.Contains(v) {
			t.Fatalf("sampled non-member %d", v)
		}
		counts[v]++
	}
	if len(counts) != members {
		t.Fatalf("expected %d distinct samples, got %d", members, len(counts))
	}
	expected := float64(trials) / members
	for v, c := range counts {
		if math.Abs(float64(c)-expected) > 0.05*expected {
			t.Fatalf("member %d sampled %d times, expected about %.0f", v, c, expected)
		}
	}
}

func TestSampleEmptyPanics(t *testing.T) {
	s := New[int](core.NewRNG(1))
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrEmpty) {
			t.Fatalf("expected ErrEmpty panic, got %v", r)
		}
	}()
	s.Sample()
}

func TestAllAndClear(t *testing.T) {
	s := New[int](core.NewRNG(1))
	for v := 1; v <= 4; v++ {
		s.Insert(v)
	}
	sum := 0
	for v := range s.All() {
		sum += v
	}
	if sum != 10 {
		t.Fatalf("expected sum 10, got %d", sum)
	}
	s.Clear()
	if s.Len() != 0 || s.Contains(1) {
		t.Fatal("clear left members behind")
	}
}
