package constraints

import (
	"fmt"

	"cellpotts/pkg/cpm"
)

// Perimeter penalises the squared deviation of every cell's perimeter from its
// kind's target P, weighted by Lambda. The perimeter of a cell is the number
// of (pixel, neighbor) pairs where the pixel belongs to the cell and the
// neighbor does not. Perimeters are kept per cell and updated on every
// mutation.
type Perimeter struct {
	P      []float64
	Lambda []float64

	m          *cpm.Model
	perimeters map[cpm.CellID]int
	buf        []cpm.Index
}

// Type reports Perimeter as a soft constraint.
func (p *Perimeter) Type() cpm.ConstraintType { return cpm.Soft }

// Attach counts the perimeters of the cells already on the lattice.
func (p *Perimeter) Attach(m *cpm.Model) error {
	if err := requireKinds("perimeter", len(p.P)); err != nil {
		return err
	}
	if err := requireSameLength("perimeter", len(p.P), len(p.Lambda)); err != nil {
		return err
	}
	p.m = m
	p.perimeters = p.recount()
	return nil
}

func (p *Perimeter) recount() map[cpm.CellID]int {
	out := map[cpm.CellID]int{}
	var buf []cpm.Index
	for i := range p.m.Grid().Indices() {
		id := p.m.Pixel(i)
		if id <= 0 {
			continue
		}
		buf = p.m.Neighbors(i, buf[:0])
		n := 0
		for _, j := range buf {
			if p.m.Pixel(j) != id {
				n++
			}
		}
		out[id] += n
	}
	return out
}

// Of returns the tracked perimeter of cell id.
func (p *Perimeter) Of(id cpm.CellID) int { return p.perimeters[id] }

// OnMutation updates the perimeters of the cells around the changed pixel.
func (p *Perimeter) OnMutation(i cpm.Index, oldID, newID cpm.CellID) {
	p.buf = p.m.Neighbors(i, p.buf[:0])
	nOld, nNew := 0, 0
	for _, j := range p.buf {
		nt := p.m.Pixel(j)
		if nt != newID {
			nNew++
		}
		if nt != oldID {
			nOld++
		}
		if nt <= 0 {
			continue
		}
		// Neighbors of the old identity gain an edge, those of the new one
		// lose the edge they had with i.
		if nt == oldID {
			p.perimeters[nt]++
		}
		if nt == newID {
			p.perimeters[nt]--
		}
	}
	if oldID > 0 {
		p.perimeters[oldID] -= nOld
		if p.m.Volume(oldID) == 0 {
			delete(p.perimeters, oldID)
		}
	}
	if newID > 0 {
		p.perimeters[newID] += nNew
	}
}

func (p *Perimeter) lambda(id cpm.CellID) (float64, int) {
	if id <= 0 {
		return 0, 0
	}
	k := p.m.CellKind(id)
	return at(p.Lambda, k), k
}

// DeltaH is the perimeter energy change of the cells touching tgt.
func (p *Perimeter) DeltaH(src, tgt cpm.Index, srcID, tgtID cpm.CellID) float64 {
	if srcID == tgtID {
		return 0
	}
	ls, ks := p.lambda(srcID)
	lt, kt := p.lambda(tgtID)
	if !(ls > 0) && !(lt > 0) {
		return 0
	}
	p.buf = p.m.Neighbors(tgt, p.buf[:0])
	var dSrc, dTgt int
	for _, j := range p.buf {
		nt := p.m.Pixel(j)
		if nt == srcID {
			dSrc--
		} else {
			dSrc++
		}
		if nt == tgtID {
			dTgt++
		} else {
			dTgt--
		}
	}
	var r float64
	if ls > 0 {
		r += ls * squaredChange(p.perimeters[srcID], dSrc, at(p.P, ks))
	}
	if lt > 0 {
		r += lt * squaredChange(p.perimeters[tgtID], dTgt, at(p.P, kt))
	}
	return r
}

func squaredChange(cur, delta int, target float64) float64 {
	hOld := float64(cur) - target
	hNew := float64(cur+delta) - target
	return hNew*hNew - hOld*hOld
}

// CheckInvariants compares the tracked perimeters with a recount.
func (p *Perimeter) CheckInvariants() error {
	want := p.recount()
	for id, n := range want {
		if p.perimeters[id] != n {
			return fmt.Errorf("%w: cell %d perimeter %d, recount %d", cpm.ErrInvariant, id, p.perimeters[id], n)
		}
	}
	for id, n := range p.perimeters {
		if _, ok := want[id]; !ok && n != 0 {
			return fmt.Errorf("%w: cell %d has perimeter %d but no boundary", cpm.ErrInvariant, id, n)
		}
	}
	return nil
}
