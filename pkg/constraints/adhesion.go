package constraints

import (
	"fmt"

	"cellpotts/pkg/cpm"
)

// Adhesion charges J[k1][k2] for every pair of differently occupied
// neighboring pixels, where k1 and k2 are the kinds of the two occupants.
type Adhesion struct {
	J [][]float64

	m   *cpm.Model
	buf []cpm.Index
}

// Type reports Adhesion as a soft constraint.
func (a *Adhesion) Type() cpm.ConstraintType { return cpm.Soft }

// Attach checks that J is square.
func (a *Adhesion) Attach(m *cpm.Model) error {
	if err := requireKinds("adhesion", len(a.J)); err != nil {
		return err
	}
	for k, row := range a.J {
		if len(row) != len(a.J) {
			return fmt.Errorf("%w: adhesion row %d has %d entries, want %d", cpm.ErrConfiguration, k, len(row), len(a.J))
		}
	}
	a.m = m
	return nil
}

func (a *Adhesion) energy(t1, t2 cpm.CellID) float64 {
	k1, k2 := a.m.CellKind(t1), a.m.CellKind(t2)
	if k1 >= len(a.J) || k2 >= len(a.J) {
		return 0
	}
	return a.J[k1][k2]
}

// hamiltonian is the adhesion energy around i if it were occupied by tp.
func (a *Adhesion) hamiltonian(i cpm.Index, tp cpm.CellID) float64 {
	a.buf = a.m.Neighbors(i, a.buf[:0])
	var r float64
	for _, j := range a.buf {
		if tn := a.m.Pixel(j); tn != tp {
			r += a.energy(tn, tp)
		}
	}
	return r
}

// DeltaH is the change in contact energy around tgt.
func (a *Adhesion) DeltaH(src, tgt cpm.Index, srcID, tgtID cpm.CellID) float64 {
	return a.hamiltonian(tgt, srcID) - a.hamiltonian(tgt, tgtID)
}
