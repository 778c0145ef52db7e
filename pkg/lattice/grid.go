// Package lattice provides the spatial index of a Potts simulation: a 2D or
// 3D grid whose pixels are addressed by a bit-packed linear index, plus the
// occupancy array mapping each pixel to the identity of the cell covering it.
package lattice

import (
	"errors"
	"fmt"
	"iter"
	"math/bits"
)

// ErrConfiguration reports a lattice that cannot be constructed.
var ErrConfiguration = errors.New("configuration error")

// IndexBits is the width of a packed pixel index.
const IndexBits = 32

// Index is a packed pixel index. Axis 0 occupies the most significant bits.
type Index uint32

// CellID identifies the occupant of a pixel. 0 is background; negative values
// mark impassable regions.
type CellID int32

// Background is the identity of unoccupied pixels.
const Background CellID = 0

// Point is a lattice coordinate. The third component is 0 on 2D grids.
type Point [3]int

// Grid is a 2D or 3D lattice with per-axis toroidal boundaries.
type Grid struct {
	ndim    int
	extents [3]int
	torus   [3]bool
	shifts  [3]uint
	masks   [3]Index
	strides [3]int64
	pixels  []CellID

	// deltas holds the Moore neighborhood in emission order; offsets holds the
	// matching packed-index offsets for interior pixels.
	deltas  [][3]int
	offsets []int64
}

// New builds a grid with the given extents (2 or 3 values). torus may be
// empty (all axes wrap), hold a single flag applied to every axis, or hold one
// flag per axis.
func New(extents []int, torus []bool) (*Grid, error) {
	ndim := len(extents)
	if ndim != 2 && ndim != 3 {
		return nil, fmt.Errorf("%w: only 2D and 3D lattices are supported, got %d axes", ErrConfiguration, ndim)
	}
	g := &Grid{ndim: ndim}
	for d, ext := range extents {
		if ext < 1 {
			return nil, fmt.Errorf("%w: extent of axis %d must be positive, got %d", ErrConfiguration, d, ext)
		}
		g.extents[d] = ext
	}
	switch len(torus) {
	case 0:
		for d := 0; d < ndim; d++ {
			g.torus[d] = true
		}
	case 1:
		for d := 0; d < ndim; d++ {
			g.torus[d] = torus[0]
		}
	case ndim:
		copy(g.torus[:], torus)
	default:
		return nil, fmt.Errorf("%w: %d torus flags for %d axes", ErrConfiguration, len(torus), ndim)
	}

	var axisBits [3]uint
	total := uint(0)
	for d := 0; d < ndim; d++ {
		axisBits[d] = uint(bits.Len(uint(g.extents[d] - 1)))
		total += axisBits[d]
	}
	if total > IndexBits {
		return nil, fmt.Errorf("%w: field %v needs %d index bits, more than %d", ErrConfiguration, extents, total, IndexBits)
	}
	shift := total
	for d := 0; d < ndim; d++ {
		shift -= axisBits[d]
		g.shifts[d] = shift
		g.masks[d] = Index(uint64(1)<<axisBits[d] - 1)
		g.strides[d] = int64(1) << shift
	}

	var last Point
	for d := 0; d < ndim; d++ {
		last[d] = g.extents[d] - 1
	}
	g.pixels = make([]CellID, int(g.PointToIndex(last))+1)
	g.buildNeighborhood()
	return g, nil
}

func (g *Grid) buildNeighborhood() {
	var walk func(d int, cur [3]int)
	walk = func(d int, cur [3]int) {
		if d == g.ndim {
			if cur == ([3]int{}) {
				return
			}
			g.deltas = append(g.deltas, cur)
			off := int64(0)
			for k := 0; k < g.ndim; k++ {
				off += int64(cur[k]) * g.strides[k]
			}
			g.offsets = append(g.offsets, off)
			return
		}
		for _, v := range [3]int{-1, 0, 1} {
			cur[d] = v
			walk(d+1, cur)
		}
	}
	walk(0, [3]int{})
}

// Dim returns the number of axes.
func (g *Grid) Dim() int { return g.ndim }

// Extents returns a copy of the per-axis extents.
func (g *Grid) Extents() []int {
	return append([]int(nil), g.extents[:g.ndim]...)
}

// Extent returns the extent of axis d.
func (g *Grid) Extent(d int) int { return g.extents[d] }

// Torus reports whether axis d wraps around.
func (g *Grid) Torus(d int) bool { return g.torus[d] }

// Size returns the number of pixels on the lattice.
func (g *Grid) Size() int {
	n := 1
	for d := 0; d < g.ndim; d++ {
		n *= g.extents[d]
	}
	return n
}

// NumNeighbors returns the size of a full Moore neighborhood (8 or 26).
func (g *Grid) NumNeighbors() int { return len(g.deltas) }

// Midpoint returns the central pixel of the lattice.
func (g *Grid) Midpoint() Point {
	var p Point
	for d := 0; d < g.ndim; d++ {
		p[d] = g.extents[d] / 2
	}
	return p
}

// PointToIndex packs a coordinate. The coordinate must lie on the lattice.
func (g *Grid) PointToIndex(p Point) Index {
	var i Index
	for d := 0; d < g.ndim; d++ {
		i |= Index(p[d]) << g.shifts[d]
	}
	return i
}

// IndexToPoint unpacks a packed index.
func (g *Grid) IndexToPoint(i Index) Point {
	var p Point
	for d := 0; d < g.ndim; d++ {
		p[d] = int((i >> g.shifts[d]) & g.masks[d])
	}
	return p
}

// Contains reports whether p lies on the lattice.
func (g *Grid) Contains(p Point) bool {
	for d := 0; d < g.ndim; d++ {
		if p[d] < 0 || p[d] >= g.extents[d] {
			return false
		}
	}
	for d := g.ndim; d < 3; d++ {
		if p[d] != 0 {
			return false
		}
	}
	return true
}

// Wrap folds p back onto toroidal axes. It reports false when p falls off a
// non-toroidal axis.
func (g *Grid) Wrap(p Point) (Point, bool) {
	for d := 0; d < g.ndim; d++ {
		ext := g.extents[d]
		if p[d] >= 0 && p[d] < ext {
			continue
		}
		if !g.torus[d] {
			return p, false
		}
		p[d] = ((p[d] % ext) + ext) % ext
	}
	return p, true
}

// At returns the occupant of pixel i.
func (g *Grid) At(i Index) CellID { return g.pixels[i] }

// Set writes the occupant of pixel i. Simulations must route writes through
// their mutation entry point so that derived state stays consistent.
func (g *Grid) Set(i Index, id CellID) { g.pixels[i] = id }

// Neighbors appends the Moore neighbors of pixel i to dst and returns the
// extended slice. Neighbors across a non-toroidal boundary are omitted; the
// order of the remaining neighbors does not depend on the position of i.
func (g *Grid) Neighbors(i Index, dst []Index) []Index {
	var lo, hi [3]bool
	edge := false
	for d := 0; d < g.ndim; d++ {
		c := int((i >> g.shifts[d]) & g.masks[d])
		lo[d] = c == 0
		hi[d] = c == g.extents[d]-1
		edge = edge || lo[d] || hi[d]
	}
	base := int64(i)
	if !edge {
		for _, off := range g.offsets {
			dst = append(dst, Index(base+off))
		}
		return dst
	}

outer:
	for k, delta := range g.deltas {
		off := g.offsets[k]
		for d := 0; d < g.ndim; d++ {
			switch {
			case delta[d] < 0 && lo[d]:
				if !g.torus[d] || g.extents[d] == 1 {
					continue outer
				}
				off += int64(g.extents[d]) * g.strides[d]
			case delta[d] > 0 && hi[d]:
				if !g.torus[d] || g.extents[d] == 1 {
					continue outer
				}
				off -= int64(g.extents[d]) * g.strides[d]
			}
		}
		dst = append(dst, Index(base+off))
	}
	return dst
}

// Indices yields every pixel index on the lattice in ascending order.
func (g *Grid) Indices() iter.Seq[Index] {
	return func(yield func(Index) bool) {
		var p Point
		var rec func(d int) bool
		rec = func(d int) bool {
			if d == g.ndim {
				return yield(g.PointToIndex(p))
			}
			for c := 0; c < g.extents[d]; c++ {
				p[d] = c
				if !rec(d + 1) {
					return false
				}
			}
			return true
		}
		rec(0)
	}
}

// Pixels yields the coordinate and occupant of every non-background pixel.
// The sequence can be ranged over repeatedly.
func (g *Grid) Pixels() iter.Seq2[Point, CellID] {
	return func(yield func(Point, CellID) bool) {
		for i, id := range g.pixels {
			if id == Background {
				continue
			}
			if !yield(g.IndexToPoint(Index(i)), id) {
				return
			}
		}
	}
}

// Displacement returns b-a on every axis, using the shortest way around on
// toroidal axes.
func (g *Grid) Displacement(a, b Point) [3]float64 {
	var v [3]float64
	for d := 0; d < g.ndim; d++ {
		diff := b[d] - a[d]
		if g.torus[d] {
			ext := g.extents[d]
			if diff > ext/2 {
				diff -= ext
			} else if diff < -ext/2 {
				diff += ext
			}
		}
		v[d] = float64(diff)
	}
	return v
}
