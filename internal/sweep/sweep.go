// Package sweep runs one model description across a grid of temperatures
// and seeds on a worker pool and summarises how the cells behaved.
package sweep

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"cellpotts/internal/config"
	"cellpotts/pkg/stats"
)

// Job is one point of the sweep.
type Job struct {
	Temperature float64
	Seed        uint64
}

// Result summarises a finished run.
type Result struct {
	Job
	// Speed is the mean centroid displacement per cell and Monte Carlo step.
	Speed float64
	// Connectedness is the mean connectedness over the surviving cells.
	Connectedness float64
	// Active is the mean percentage of active pixels per cell, when the
	// model has an activity constraint.
	Active  float64
	Volume  float64
	Cells   int
	Elapsed time.Duration
	Err     error
}

// Grid expands every temperature against every seed.
func Grid(temperatures []float64, seeds []uint64) []Job {
	jobs := make([]Job, 0, len(temperatures)*len(seeds))
	for _, t := range temperatures {
		for _, s := range seeds {
			jobs = append(jobs, Job{Temperature: t, Seed: s})
		}
	}
	return jobs
}

// Run measures every job on workers goroutines. Results come back fastest
// first; failed jobs sort last.
func Run(base config.Model, jobs []Job, steps, workers int) []Result {
	workers = max(workers, 1)
	in := make(chan Job)
	out := make(chan Result)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range in {
				out <- Measure(base, job, steps)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	go func() {
		for _, job := range jobs {
			in <- job
		}
		close(in)
	}()

	var all []Result
	for res := range out {
		all = append(all, res)
	}
	slices.SortFunc(all, func(a, b Result) int {
		if (a.Err == nil) != (b.Err == nil) {
			if a.Err == nil {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(b.Speed, a.Speed); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Temperature, b.Temperature); c != 0 {
			return c
		}
		return cmp.Compare(a.Seed, b.Seed)
	})
	return all
}

// Measure builds base with the job's temperature and seed, advances it by
// steps and records how far the cells travelled.
func Measure(base config.Model, job Job, steps int) (res Result) {
	res.Job = job
	start := time.Now()
	defer func() { res.Elapsed = time.Since(start) }()

	spec := base
	spec.Temperature = job.Temperature
	spec.Seed = job.Seed
	b, err := config.Build(spec)
	if err != nil {
		res.Err = err
		return res
	}
	m := b.Model

	var travelled float64
	var samples int
	prev := stats.Centroids(m)
	for k := 0; k < steps && m.BorderSize() > 0; k++ {
		if err := b.Advance(); err != nil {
			res.Err = err
			return res
		}
		cur := stats.Centroids(m)
		for id, c := range cur {
			if p, ok := prev[id]; ok {
				travelled += stats.Distance(m, p, c)
				samples++
			}
		}
		prev = cur
	}
	if samples > 0 {
		res.Speed = travelled / float64(samples)
	}
	summarise(&res, b)
	return res
}

func summarise(res *Result, b *config.Built) {
	m := b.Model
	res.Cells = m.NumCells()
	if res.Cells == 0 {
		return
	}
	var volume, conn, active float64
	for id := range m.CellIDs() {
		volume += float64(m.Volume(id))
	}
	for _, c := range stats.Connectedness(m) {
		conn += c
	}
	if b.Activity != nil {
		for _, p := range stats.PercentageActive(m, b.Activity, 0) {
			active += p
		}
	}
	n := float64(res.Cells)
	res.Volume = volume / n
	res.Connectedness = conn / n
	res.Active = active / n
}

// Summary reports the cell statistics of b as it stands.
func Summary(b *config.Built) Result {
	var res Result
	res.Temperature = b.Model.Temperature()
	res.Seed = b.Spec.Seed
	summarise(&res, b)
	return res
}
