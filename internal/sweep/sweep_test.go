package sweep

import (
	"testing"

	"cellpotts/internal/config"
)

const actModel = `
lattice: {extents: [60, 60]}
adhesion: {j: [[0, 20], [20, 0]]}
volume: {target: [0, 150], lambda: [0, 50]}
perimeter: {target: [0, 130], lambda: [0, 2]}
activity: {max: [0, 40], lambda: [0, 300]}
cells:
  - kind: 1
    box: {lo: [24, 24], hi: [36, 36]}
`

func parse(t *testing.T, doc string) config.Model {
	t.Helper()
	spec, err := config.Parse([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	return spec
}

func TestGrid(t *testing.T) {
	jobs := Grid([]float64{10, 20}, []uint64{1, 2, 3})
	if len(jobs) != 6 {
		t.Fatalf("got %d jobs", len(jobs))
	}
	if jobs[0] != (Job{Temperature: 10, Seed: 1}) || jobs[5] != (Job{Temperature: 20, Seed: 3}) {
		t.Fatalf("unexpected order: %v", jobs)
	}
}

func TestMeasureIsReproducible(t *testing.T) {
	spec := parse(t, actModel)
	a := Measure(spec, Job{Temperature: 20, Seed: 4}, 10)
	b := Measure(spec, Job{Temperature: 20, Seed: 4}, 10)
	if a.Err != nil || b.Err != nil {
		t.Fatalf("errors: %v %v", a.Err, b.Err)
	}
	if a.Speed != b.Speed || a.Volume != b.Volume {
		t.Fatalf("runs differ: %+v vs %+v", a, b)
	}
	if a.Cells != 1 || a.Speed <= 0 {
		t.Fatalf("unexpected result %+v", a)
	}
	if a.Active <= 0 || a.Active > 100 {
		t.Fatalf("active percentage %v", a.Active)
	}
	if a.Connectedness <= 0 || a.Connectedness > 1 {
		t.Fatalf("connectedness %v", a.Connectedness)
	}
}

func TestRunCollectsEveryJob(t *testing.T) {
	spec := parse(t, actModel)
	jobs := Grid([]float64{5, 20}, []uint64{1, 2})
	results := Run(spec, jobs, 5, 3)
	if len(results) != len(jobs) {
		t.Fatalf("got %d results for %d jobs", len(results), len(jobs))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Speed > results[i-1].Speed {
			t.Fatalf("results not sorted by speed: %v", results)
		}
	}
}

func TestFailedJobsSortLast(t *testing.T) {
	// Three one-pixel cells cannot fit on a two-pixel lattice.
	spec := parse(t, "lattice: {extents: [2, 1]}\ncells: [{kind: 1, count: 3, attempts: 5}]\n")
	results := Run(spec, []Job{{Temperature: 20, Seed: 1}}, 1, 1)
	if len(results) != 1 || results[0].Err == nil {
		t.Fatalf("expected a crowding failure, got %+v", results)
	}
}

func TestSummary(t *testing.T) {
	spec := parse(t, actModel)
	b, err := config.Build(spec)
	if err != nil {
		t.Fatal(err)
	}
	s := Summary(b)
	if s.Cells != 1 || s.Volume != 144 || s.Connectedness != 1 {
		t.Fatalf("summary %+v", s)
	}
}
