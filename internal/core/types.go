package core

import (
	"maps"
	"slices"
)

// Size describes the dimensions of the displayed plane.
type Size struct {
	W int
	H int
}

// Sim is the contract between a simulation and the viewer. Cells returns one
// palette code per displayed pixel in row-major order.
type Sim interface {
	Name() string
	Size() Size
	Reset(seed int64)
	Step()
	Cells() []uint8
}

// FrameProvider is implemented by sims that expose overlay layers besides the
// palette codes.
type FrameProvider interface {
	Frame() *Frame
}

// Factory constructs a Sim using an optional configuration map.
type Factory func(cfg map[string]string) Sim

var sims = map[string]Factory{}

// Register adds a simulation factory under the provided name.
func Register(name string, f Factory) {
	if name == "" || f == nil {
		return
	}
	sims[name] = f
}

// Sims exposes the registry of available simulation factories.
func Sims() map[string]Factory {
	return sims
}

// Names lists the registered simulations alphabetically.
func Names() []string {
	return slices.Sorted(maps.Keys(sims))
}
