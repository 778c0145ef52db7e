package constraints

import "cellpotts/pkg/cpm"

// Volume penalises the squared deviation of every cell from its kind's target
// volume V, weighted by Lambda.
type Volume struct {
	V      []float64
	Lambda []float64

	m *cpm.Model
}

// Type reports Volume as a soft constraint.
func (v *Volume) Type() cpm.ConstraintType { return cpm.Soft }

// Attach checks that V and Lambda cover the same kinds.
func (v *Volume) Attach(m *cpm.Model) error {
	if err := requireKinds("volume", len(v.V)); err != nil {
		return err
	}
	if err := requireSameLength("volume", len(v.V), len(v.Lambda)); err != nil {
		return err
	}
	v.m = m
	return nil
}

// energy is the volume term of cell t after it gains gain pixels.
func (v *Volume) energy(gain int, t cpm.CellID) float64 {
	if t <= 0 {
		return 0
	}
	k := v.m.CellKind(t)
	l := at(v.Lambda, k)
	if l == 0 {
		return 0
	}
	d := at(v.V, k) - float64(v.m.Volume(t)+gain)
	return l * d * d
}

// DeltaH is the volume energy change for both cells involved in the copy.
func (v *Volume) DeltaH(src, tgt cpm.Index, srcID, tgtID cpm.CellID) float64 {
	dh := v.energy(1, srcID) - v.energy(0, srcID)
	dh += v.energy(-1, tgtID) - v.energy(0, tgtID)
	return dh
}
