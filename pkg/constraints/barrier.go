package constraints

import "cellpotts/pkg/cpm"

// Barrier keeps impassable regions fixed. The engine already refuses to copy
// into a negative identity; Barrier also refuses to copy out of one.
type Barrier struct{}

// Type reports Barrier as a hard constraint.
func (Barrier) Type() cpm.ConstraintType { return cpm.Hard }

// Fulfilled rejects copies whose source is an obstacle.
func (Barrier) Fulfilled(src, tgt cpm.Index, srcID, tgtID cpm.CellID) bool {
	return srcID >= 0
}
