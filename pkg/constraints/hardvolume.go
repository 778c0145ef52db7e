package constraints

import "cellpotts/pkg/cpm"

// HardVolumeRange forbids copy attempts that would grow a cell beyond Max or
// shrink it below Min for its kind. A Max entry of zero or less leaves the
// kind without an upper bound.
type HardVolumeRange struct {
	Min []int
	Max []int

	m *cpm.Model
}

// Type reports HardVolumeRange as a hard constraint.
func (h *HardVolumeRange) Type() cpm.ConstraintType { return cpm.Hard }

// Attach checks that Min and Max cover the same kinds.
func (h *HardVolumeRange) Attach(m *cpm.Model) error {
	if err := requireKinds("volume range", len(h.Min)); err != nil {
		return err
	}
	if err := requireSameLength("volume range", len(h.Min), len(h.Max)); err != nil {
		return err
	}
	h.m = m
	return nil
}

// Fulfilled rejects copies that push the source above Max or the target below Min.
func (h *HardVolumeRange) Fulfilled(src, tgt cpm.Index, srcID, tgtID cpm.CellID) bool {
	if srcID > 0 {
		limit := at(h.Max, h.m.CellKind(srcID))
		if limit > 0 && h.m.Volume(srcID)+1 > limit {
			return false
		}
	}
	if tgtID > 0 && h.m.Volume(tgtID)-1 < at(h.Min, h.m.CellKind(tgtID)) {
		return false
	}
	return true
}
