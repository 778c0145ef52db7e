package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"cellpotts/internal/config"
	"cellpotts/internal/sims/potts"
	"cellpotts/internal/sweep"
)

type floatList []float64

func (l *floatList) String() string {
	parts := make([]string, len(*l))
	for i, v := range *l {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

func (l *floatList) Set(value string) error {
	for _, part := range strings.Split(value, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return err
		}
		*l = append(*l, v)
	}
	return nil
}

func main() {
	name := flag.String("sim", "act", "bundled scenario to sweep")
	file := flag.String("file", "", "YAML model file (overrides -sim)")
	steps := flag.Int("steps", 200, "Monte Carlo steps per run")
	seeds := flag.Int("seeds", 3, "seeds per temperature, counting up from the model's seed")
	workers := flag.Int("workers", runtime.NumCPU(), "number of worker goroutines")
	top := flag.Int("top", 10, "results to print")
	var temps floatList
	flag.Var(&temps, "t", "comma separated temperatures (repeatable); defaults to the model's")
	flag.Parse()

	spec, err := load(*name, *file)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if len(temps) == 0 {
		temps = floatList{spec.Temperature}
	}
	var seedList []uint64
	for k := 0; k < max(*seeds, 1); k++ {
		seedList = append(seedList, spec.Seed+uint64(k))
	}
	jobs := sweep.Grid(temps, seedList)

	fmt.Printf("Sweeping %s: %d runs (%d workers, %d steps)\n", spec.Name, len(jobs), *workers, *steps)
	start := time.Now()
	results := sweep.Run(spec, jobs, *steps, *workers)

	fmt.Printf("\nTop results (elapsed %s):\n", time.Since(start).Round(time.Millisecond))
	for i, res := range results {
		if i >= *top {
			break
		}
		if res.Err != nil {
			fmt.Printf("%2d) T=%g seed=%d failed: %v\n", i+1, res.Temperature, res.Seed, res.Err)
			continue
		}
		fmt.Printf("%2d) T=%g seed=%d speed=%.3f conn=%.3f active=%.1f%% volume=%.1f cells=%d (%s)\n",
			i+1, res.Temperature, res.Seed, res.Speed, res.Connectedness, res.Active, res.Volume, res.Cells,
			res.Elapsed.Round(time.Millisecond))
	}
}

func load(name, file string) (config.Model, error) {
	if file != "" {
		return config.Load(file)
	}
	spec, ok := potts.Preset(name)
	if !ok {
		return config.Model{}, fmt.Errorf("unknown sim %q, available: %s", name, strings.Join(potts.Presets(), ", "))
	}
	return spec, nil
}
