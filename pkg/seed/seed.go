// Package seed places initial cells on a model's lattice.
package seed

import (
	"errors"
	"fmt"
	"math"

	"cellpotts/pkg/cpm"
)

// DefaultAttempts bounds random placement when callers pass zero attempts.
const DefaultAttempts = 10000

// ErrCrowded is returned when no free pixel was found within the attempt
// budget.
var ErrCrowded = errors.New("seed: no free pixel found")

// Cell seeds a one-pixel cell of the given kind. The midpoint is tried first,
// then random pixels until a background one turns up.
func Cell(m *cpm.Model, kind, maxAttempts int) (cpm.CellID, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultAttempts
	}
	p := m.Midpoint()
	ext := m.Extents()
	for m.PixelAt(p) != cpm.Background {
		if maxAttempts == 0 {
			return 0, fmt.Errorf("%w: lattice too full for kind %d", ErrCrowded, kind)
		}
		maxAttempts--
		for d := range ext {
			p[d] = m.RandomInt(0, ext[d]-1)
		}
	}
	return CellAt(m, kind, p), nil
}

// CellAt seeds a one-pixel cell of the given kind at p, replacing whatever
// occupied it.
func CellAt(m *cpm.Model, kind int, p cpm.Point) cpm.CellID {
	id := m.AllocateCell(kind)
	m.SetPixelAt(p, id)
	return id
}

// Box seeds a single cell filling the half-open box [lo, hi).
func Box(m *cpm.Model, kind int, lo, hi cpm.Point) cpm.CellID {
	id := m.AllocateCell(kind)
	Fill(m, lo, hi, id)
	return id
}

// Fill writes id into every pixel of the half-open box [lo, hi). The box
// wraps around toroidal axes and is clipped on bounded ones. Negative
// identities mark impassable regions.
func Fill(m *cpm.Model, lo, hi cpm.Point, id cpm.CellID) {
	if m.Dim() == 2 {
		lo[2], hi[2] = 0, 1
	}
	for x := lo[0]; x < hi[0]; x++ {
		for y := lo[1]; y < hi[1]; y++ {
			for z := lo[2]; z < hi[2]; z++ {
				if p, ok := m.Grid().Wrap(cpm.Point{x, y, z}); ok {
					m.SetPixelAt(p, id)
				}
			}
		}
	}
}

// CellsInCircle seeds n one-pixel cells at random background pixels strictly
// inside the circle (or sphere) around center. Zero maxAttempts means 10n.
func CellsInCircle(m *cpm.Model, kind, n int, center cpm.Point, radius float64, maxAttempts int) ([]cpm.CellID, error) {
	if maxAttempts <= 0 {
		maxAttempts = 10 * n
	}
	var ids []cpm.CellID
	dim := m.Dim()
	for len(ids) < n {
		if maxAttempts == 0 {
			return ids, fmt.Errorf("%w: seeded %d of %d cells", ErrCrowded, len(ids), n)
		}
		maxAttempts--
		var p cpm.Point
		var d float64
		for k := 0; k < dim; k++ {
			c := float64(center[k])
			p[k] = m.RandomInt(int(math.Ceil(c-radius)), int(math.Floor(c+radius)))
			diff := float64(p[k] - center[k])
			d += diff * diff
		}
		if d >= radius*radius {
			continue
		}
		p, ok := m.Grid().Wrap(p)
		if !ok || m.PixelAt(p) != cpm.Background {
			continue
		}
		ids = append(ids, CellAt(m, kind, p))
	}
	return ids, nil
}
