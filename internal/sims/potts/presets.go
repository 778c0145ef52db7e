package potts

import (
	"embed"
	"fmt"
	"path"
	"slices"
	"strconv"
	"strings"

	"cellpotts/internal/config"
	"cellpotts/internal/core"
)

//go:embed presets/*.yaml
var presetFS embed.FS

var presets = map[string]config.Model{}

func init() {
	entries, err := presetFS.ReadDir("presets")
	if err != nil {
		panic(err)
	}
	for _, e := range entries {
		raw, err := presetFS.ReadFile(path.Join("presets", e.Name()))
		if err != nil {
			panic(err)
		}
		spec, err := config.Parse(raw)
		if err != nil {
			panic(fmt.Sprintf("preset %s: %v", e.Name(), err))
		}
		if spec.Name == "" {
			spec.Name = strings.TrimSuffix(e.Name(), path.Ext(e.Name()))
		}
		presets[spec.Name] = spec
		core.Register(spec.Name, factory(spec))
	}
}

// Presets lists the bundled scenarios alphabetically.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Preset returns a copy of the named scenario description.
func Preset(name string) (config.Model, bool) {
	spec, ok := presets[name]
	return spec, ok
}

func factory(base config.Model) core.Factory {
	return func(cfg map[string]string) core.Sim {
		spec, steps := FromMap(base, cfg)
		s, err := New(spec)
		if err != nil {
			// Overrides can make seeding impossible; fall back to the preset.
			s, err = New(base)
			if err != nil {
				panic(err)
			}
		}
		s.steps = steps
		return s
	}
}

// FromMap applies viewer overrides to spec. Recognised keys are w and h (the
// first two extents), seed, temperature and steps (MCS per frame). Invalid
// values are ignored, and so is any combination the model cannot validate.
func FromMap(spec config.Model, cfg map[string]string) (config.Model, int) {
	steps := 1
	if v, ok := cfg["steps"]; ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			steps = n
		}
	}
	if len(cfg) == 0 {
		return spec, steps
	}
	out := spec
	out.Lattice.Extents = slices.Clone(spec.Lattice.Extents)
	for k, key := range []string{"w", "h"} {
		if v, ok := cfg[key]; ok {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				out.Lattice.Extents[k] = n
			}
		}
	}
	if v, ok := cfg["seed"]; ok {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			out.Seed = n
		}
	}
	if v, ok := cfg["temperature"]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			out.Temperature = f
		}
	}
	if err := out.Validate(); err != nil {
		return spec, steps
	}
	return out, steps
}
