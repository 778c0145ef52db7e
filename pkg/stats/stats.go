// Package stats computes read-only measurements of a model's cells.
package stats

import (
	"maps"
	"math"
	"slices"

	"cellpotts/pkg/constraints"
	"cellpotts/pkg/cpm"
)

// Vec is a position in lattice coordinates. Unused axes are zero.
type Vec [3]float64

// CellPixels groups the coordinates of every cell pixel by identity.
// Background and impassable pixels are left out.
func CellPixels(m *cpm.Model) map[cpm.CellID][]cpm.Point {
	out := map[cpm.CellID][]cpm.Point{}
	for p, id := range m.CellPixels() {
		if id > 0 {
			out[id] = append(out[id], p)
		}
	}
	return out
}

// CellIndices groups the indices of every cell pixel by identity.
func CellIndices(m *cpm.Model) map[cpm.CellID][]cpm.Index {
	out := map[cpm.CellID][]cpm.Index{}
	for i := range m.Grid().Indices() {
		if id := m.Pixel(i); id > 0 {
			out[id] = append(out[id], i)
		}
	}
	return out
}

// SortedIDs returns the keys of a per-cell map in ascending order.
func SortedIDs[V any](byCell map[cpm.CellID]V) []cpm.CellID {
	return slices.Sorted(maps.Keys(byCell))
}

// Centroid is the plain mean of pixels. It ignores wraparound.
func Centroid(pixels []cpm.Point) Vec {
	var c Vec
	if len(pixels) == 0 {
		return c
	}
	for _, p := range pixels {
		for d := range c {
			c[d] += float64(p[d])
		}
	}
	for d := range c {
		c[d] /= float64(len(pixels))
	}
	return c
}

// CentroidTorus averages pixel offsets measured from the first pixel the
// shortest way around every toroidal axis, then folds the result back onto
// the lattice. It is exact for cells spanning less than half the lattice.
func CentroidTorus(m *cpm.Model, pixels []cpm.Point) Vec {
	var c Vec
	if len(pixels) == 0 {
		return c
	}
	g := m.Grid()
	ref := pixels[0]
	for _, p := range pixels {
		off := g.Displacement(ref, p)
		for d := range c {
			c[d] += off[d]
		}
	}
	for d := 0; d < m.Dim(); d++ {
		v := float64(ref[d]) + c[d]/float64(len(pixels))
		if ext := float64(g.Extent(d)); g.Torus(d) {
			v = math.Mod(v+ext, ext)
		}
		c[d] = v
	}
	for d := m.Dim(); d < 3; d++ {
		c[d] = 0
	}
	return c
}

// Centroids returns the torus-aware centroid of every cell.
func Centroids(m *cpm.Model) map[cpm.CellID]Vec {
	out := map[cpm.CellID]Vec{}
	for id, px := range CellPixels(m) {
		out[id] = CentroidTorus(m, px)
	}
	return out
}

// AxisStats returns the mean and sample variance of the cell's coordinates
// along one axis. It ignores wraparound.
func AxisStats(pixels []cpm.Point, axis int) (mean, variance float64) {
	var n, sqd float64
	for _, p := range pixels {
		n++
		v := float64(p[axis])
		delta := v - mean
		mean += delta / n
		sqd += delta * (v - mean)
	}
	if n < 2 {
		return mean, 0
	}
	return mean, sqd / (n - 1)
}

// ConnectedComponents returns the sizes of the connected pieces of cell id,
// in discovery order. Connectivity follows the model's neighborhood, so
// pieces touching across a toroidal edge count as one.
func ConnectedComponents(m *cpm.Model, id cpm.CellID, indices []cpm.Index) []int {
	visited := make(map[cpm.Index]bool, len(indices))
	var sizes []int
	var queue, nbrs []cpm.Index
	for _, seed := range indices {
		if visited[seed] {
			continue
		}
		visited[seed] = true
		queue = append(queue[:0], seed)
		size := 0
		for len(queue) > 0 {
			e := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			size++
			nbrs = m.Neighbors(e, nbrs[:0])
			for _, j := range nbrs {
				if !visited[j] && m.Pixel(j) == id {
					visited[j] = true
					queue = append(queue, j)
				}
			}
		}
		sizes = append(sizes, size)
	}
	return sizes
}

// Connectedness returns, per cell, the probability that two pixels drawn at
// random belong to the same connected piece. A connected cell scores 1.
func Connectedness(m *cpm.Model) map[cpm.CellID]float64 {
	out := map[cpm.CellID]float64{}
	for id, idx := range CellIndices(m) {
		sizes := ConnectedComponents(m, id, idx)
		total := 0
		for _, s := range sizes {
			total += s
		}
		var r float64
		for _, s := range sizes {
			f := float64(s) / float64(total)
			r += f * f
		}
		out[id] = r
	}
	return out
}

// PercentageActive returns, per cell, the percentage of its pixels whose
// activity exceeds threshold.
func PercentageActive(m *cpm.Model, act *constraints.Activity, threshold int) map[cpm.CellID]float64 {
	out := map[cpm.CellID]float64{}
	for id, idx := range CellIndices(m) {
		n := 0
		for _, i := range idx {
			if act.At(i) > threshold {
				n++
			}
		}
		out[id] = 100 * float64(n) / float64(len(idx))
	}
	return out
}

// CellsOnNetwork returns the cells touching an impassable (negative identity)
// pixel, in ascending order.
func CellsOnNetwork(m *cpm.Model) []cpm.CellID {
	found := map[cpm.CellID]bool{}
	var nbrs []cpm.Index
	for i := range m.BorderIndices() {
		id := m.Pixel(i)
		if id <= 0 || found[id] {
			continue
		}
		nbrs = m.Neighbors(i, nbrs[:0])
		for _, j := range nbrs {
			if m.Pixel(j) < 0 {
				found[id] = true
				break
			}
		}
	}
	return SortedIDs(found)
}

// CellNeighbors counts, for every other identity touching cell id, the
// number of (border pixel, neighbor) contacts. Background is included.
func CellNeighbors(m *cpm.Model, id cpm.CellID) map[cpm.CellID]int {
	out := map[cpm.CellID]int{}
	var nbrs []cpm.Index
	for i := range m.BorderIndices() {
		if m.Pixel(i) != id {
			continue
		}
		nbrs = m.Neighbors(i, nbrs[:0])
		for _, j := range nbrs {
			if other := m.Pixel(j); other != id {
				out[other]++
			}
		}
	}
	return out
}

// Distance returns the Euclidean distance between two centroids, measured the
// shortest way around toroidal axes.
func Distance(m *cpm.Model, a, b Vec) float64 {
	g := m.Grid()
	var sq float64
	for d := 0; d < m.Dim(); d++ {
		diff := b[d] - a[d]
		if ext := float64(g.Extent(d)); g.Torus(d) {
			diff = math.Remainder(diff, ext)
		}
		sq += diff * diff
	}
	return math.Sqrt(sq)
}
