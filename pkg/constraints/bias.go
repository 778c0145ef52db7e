package constraints

import (
	"fmt"
	"math"

	"cellpotts/pkg/cpm"
)

// BiasMode selects how DirectionalBias scores a copy attempt.
type BiasMode int

const (
	// Radial favors copies pointing at Target.
	Radial BiasMode = iota + 1
	// Linear favors copies along Direction.
	Linear
	// Field favors copies up the gradient of Field.
	Field
	// Custom delegates scoring to Custom.
	Custom
)

var biasModes = map[string]BiasMode{
	"radial": Radial,
	"linear": Linear,
	"field":  Field,
	"grid":   Field,
	"custom": Custom,
}

// ParseBiasMode maps a mode name to a BiasMode. "grid" is accepted as an
// alias of "field".
func ParseBiasMode(s string) (BiasMode, error) {
	if m, ok := biasModes[s]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("%w: unknown bias mode %q (want radial, linear, field or custom)", cpm.ErrConfiguration, s)
}

func (b BiasMode) String() string {
	switch b {
	case Radial:
		return "radial"
	case Linear:
		return "linear"
	case Field:
		return "field"
	case Custom:
		return "custom"
	}
	return fmt.Sprintf("BiasMode(%d)", int(b))
}

// DirectionalBias lowers the energy of copy attempts that move cells in a
// preferred direction: ΔH = -bias·λ, with λ taken from the source kind, or
// from the target kind when the source is background.
type DirectionalBias struct {
	Mode   BiasMode
	Lambda []float64

	Target    cpm.Point
	Direction [3]float64
	Field     func(p cpm.Point) float64
	Custom    func(src, tgt cpm.Point, m *cpm.Model) float64

	m *cpm.Model
}

// NewDirectionalBias parses mode and returns a bias with the given weights.
// The caller fills in the mode's parameter before registering it.
func NewDirectionalBias(mode string, lambda []float64) (*DirectionalBias, error) {
	bm, err := ParseBiasMode(mode)
	if err != nil {
		return nil, err
	}
	return &DirectionalBias{Mode: bm, Lambda: lambda}, nil
}

// Type reports DirectionalBias as a soft constraint.
func (d *DirectionalBias) Type() cpm.ConstraintType { return cpm.Soft }

// Attach checks that the mode has what it needs.
func (d *DirectionalBias) Attach(m *cpm.Model) error {
	if err := requireKinds("bias", len(d.Lambda)); err != nil {
		return err
	}
	switch d.Mode {
	case Radial:
	case Linear:
		if d.Direction == ([3]float64{}) {
			return fmt.Errorf("%w: linear bias needs a non-zero direction", cpm.ErrConfiguration)
		}
	case Field:
		if d.Field == nil {
			return fmt.Errorf("%w: field bias needs a field function", cpm.ErrConfiguration)
		}
	case Custom:
		if d.Custom == nil {
			return fmt.Errorf("%w: custom bias needs a scoring function", cpm.ErrConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown bias mode %v", cpm.ErrConfiguration, d.Mode)
	}
	d.m = m
	return nil
}

func cosine(a, b [3]float64) float64 {
	var r, na, nb float64
	for k := range a {
		r += a[k] * b[k]
		na += a[k] * a[k]
		nb += b[k] * b[k]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return r / math.Sqrt(na) / math.Sqrt(nb)
}

// Bias scores the attempt from src to tgt in [-1, 1] for the radial and
// linear modes.
func (d *DirectionalBias) Bias(src, tgt cpm.Index) float64 {
	ps, pt := d.m.IndexToPoint(src), d.m.IndexToPoint(tgt)
	g := d.m.Grid()
	switch d.Mode {
	case Radial:
		return cosine(g.Displacement(ps, d.Target), g.Displacement(ps, pt))
	case Linear:
		return cosine(g.Displacement(ps, pt), d.Direction)
	case Field:
		return d.Field(pt) - d.Field(ps)
	case Custom:
		return d.Custom(ps, pt, d.m)
	}
	return 0
}

// DeltaH scales the bias of the copy direction by the acting kind's Lambda.
func (d *DirectionalBias) DeltaH(src, tgt cpm.Index, srcID, tgtID cpm.CellID) float64 {
	k := d.m.CellKind(srcID)
	if srcID == cpm.Background {
		k = d.m.CellKind(tgtID)
	}
	l := at(d.Lambda, k)
	if l == 0 {
		return 0
	}
	return -d.Bias(src, tgt) * l
}
