package constraints

import (
	"fmt"
	"math"

	"cellpotts/pkg/cpm"
)

// ActivityMean selects how the local activity around a pixel is averaged.
type ActivityMean int

const (
	Geometric ActivityMean = iota
	Arithmetic
)

func (a ActivityMean) String() string {
	if a == Arithmetic {
		return "arithmetic"
	}
	return "geometric"
}

// ParseActivityMean accepts "arithmetic" or "geometric". The empty string
// selects the geometric mean.
func ParseActivityMean(s string) (ActivityMean, error) {
	switch s {
	case "arithmetic":
		return Arithmetic, nil
	case "geometric", "":
		return Geometric, nil
	}
	return 0, fmt.Errorf("%w: unknown activity mean %q", cpm.ErrConfiguration, s)
}

// Activity implements the Act model: every pixel a cell takes over starts at
// its kind's Max activity, which decays by one per Monte Carlo step. Copy
// attempts from more active into less active regions are favored, so cells
// keep protruding where they protruded recently.
type Activity struct {
	Max    []int
	Lambda []float64
	Mean   ActivityMean

	m   *cpm.Model
	act map[cpm.Index]int
	buf []cpm.Index
}

// Type reports Activity as a soft constraint.
func (a *Activity) Type() cpm.ConstraintType { return cpm.Soft }

// Attach validates the per-kind parameters and binds the model.
func (a *Activity) Attach(m *cpm.Model) error {
	if err := requireKinds("activity", len(a.Max)); err != nil {
		return err
	}
	if err := requireSameLength("activity", len(a.Max), len(a.Lambda)); err != nil {
		return err
	}
	a.m = m
	a.act = map[cpm.Index]int{}
	return nil
}

// At returns the stored activity of pixel i.
func (a *Activity) At(i cpm.Index) int { return a.act[i] }

// Active returns the number of pixels with non-zero activity.
func (a *Activity) Active() int { return len(a.act) }

// Local returns the mean activity of i and its same-cell neighbors.
func (a *Activity) Local(i cpm.Index) float64 {
	t := a.m.Pixel(i)
	if t <= 0 {
		return 0
	}
	a.buf = a.m.Neighbors(i, a.buf[:0])
	if a.Mean == Arithmetic {
		r, n := float64(a.act[i]), 1
		for _, j := range a.buf {
			if a.m.Pixel(j) == t {
				r += float64(a.act[j])
				n++
			}
		}
		return r / float64(n)
	}
	r, n := float64(a.act[i]), 1
	for _, j := range a.buf {
		if a.m.Pixel(j) != t {
			continue
		}
		v := a.act[j]
		if v == 0 {
			return 0
		}
		r *= float64(v)
		n++
	}
	return math.Pow(r, 1/float64(n))
}

// DeltaH rewards copies from more active pixels into less active ones.
func (a *Activity) DeltaH(src, tgt cpm.Index, srcID, tgtID cpm.CellID) float64 {
	// Parameters come from the source cell. A background source means the
	// target cell retracts, which is charged with the target's parameters.
	k := a.m.CellKind(srcID)
	if srcID == cpm.Background {
		k = a.m.CellKind(tgtID)
	}
	maxAct, lambda := at(a.Max, k), at(a.Lambda, k)
	if maxAct == 0 || lambda == 0 {
		return 0
	}
	return lambda * (a.Local(tgt) - a.Local(src)) / float64(maxAct)
}

// OnMutation sets a newly copied pixel to its kind's maximum activity.
func (a *Activity) OnMutation(i cpm.Index, oldID, newID cpm.CellID) {
	if newID > 0 {
		if v := at(a.Max, a.m.CellKind(newID)); v > 0 {
			a.act[i] = v
			return
		}
	}
	delete(a.act, i)
}

// OnStepComplete decays every recorded activity value by one.
func (a *Activity) OnStepComplete() {
	for i, v := range a.act {
		if v <= 1 {
			delete(a.act, i)
			continue
		}
		a.act[i] = v - 1
	}
}
