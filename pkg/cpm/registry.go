package cpm

import "fmt"

// ConstraintType declares the capability a constraint is registered for.
type ConstraintType int

const (
	// Soft constraints contribute an energy difference to every copy attempt.
	Soft ConstraintType = iota + 1
	// Hard constraints veto infeasible copy attempts.
	Hard
	// Listener constraints only observe mutations and steps.
	Listener
)

func (t ConstraintType) String() string {
	switch t {
	case Soft:
		return "soft"
	case Hard:
		return "hard"
	case Listener:
		return "listener"
	default:
		return fmt.Sprintf("ConstraintType(%d)", int(t))
	}
}

// Constraint is anything that can be registered with a Model.
type Constraint interface {
	Type() ConstraintType
}

// SoftConstraint computes the energy change of copying the source pixel's
// identity into the target pixel.
type SoftConstraint interface {
	Constraint
	DeltaH(src, tgt Index, srcID, tgtID CellID) float64
}

// HardConstraint reports whether a copy attempt is allowed at all.
type HardConstraint interface {
	Constraint
	Fulfilled(src, tgt Index, srcID, tgtID CellID) bool
}

// MutationListener is notified after every committed pixel change.
type MutationListener interface {
	OnMutation(i Index, oldID, newID CellID)
}

// StepListener is notified once at the end of every Monte Carlo step.
type StepListener interface {
	OnStepComplete()
}

// Attacher receives the model a constraint is registered with. The model is
// a non-owning back-reference used to read lattice state during evaluation.
type Attacher interface {
	Attach(m *Model) error
}

// InvariantChecker is implemented by constraints whose incremental state can
// be verified against a recount from the lattice.
type InvariantChecker interface {
	CheckInvariants() error
}

// DeltaHFunc is the callable form of a soft constraint.
type DeltaHFunc func(src, tgt Index, srcID, tgtID CellID) float64

// FulfilledFunc is the callable form of a hard constraint.
type FulfilledFunc func(src, tgt Index, srcID, tgtID CellID) bool

// registry stores one typed handle per capability, in registration order.
type registry struct {
	soft     []DeltaHFunc
	hard     []FulfilledFunc
	mutation []func(i Index, oldID, newID CellID)
	step     []func()
	checkers []InvariantChecker
	names    []string
}

// Add registers c. The declared type must be backed by the matching method:
// a Soft constraint needs DeltaH and a Hard constraint needs Fulfilled.
// Optional hooks are picked up whatever the declared type.
func (m *Model) Add(c Constraint) error {
	name := fmt.Sprintf("%T", c)
	var (
		soft SoftConstraint
		hard HardConstraint
		ok   bool
	)
	switch c.Type() {
	case Soft:
		if soft, ok = c.(SoftConstraint); !ok {
			return contractViolation("%s is declared soft but has no DeltaH", name)
		}
	case Hard:
		if hard, ok = c.(HardConstraint); !ok {
			return contractViolation("%s is declared hard but has no Fulfilled", name)
		}
	case Listener:
	default:
		return contractViolation("%s declares unknown constraint type %v", name, c.Type())
	}

	if a, ok := c.(Attacher); ok {
		if err := a.Attach(m); err != nil {
			return fmt.Errorf("attach %s: %w", name, err)
		}
	}
	if soft != nil {
		m.reg.soft = append(m.reg.soft, soft.DeltaH)
	}
	if hard != nil {
		m.reg.hard = append(m.reg.hard, hard.Fulfilled)
	}
	if l, ok := c.(MutationListener); ok {
		m.reg.mutation = append(m.reg.mutation, l.OnMutation)
	}
	if l, ok := c.(StepListener); ok {
		m.reg.step = append(m.reg.step, l.OnStepComplete)
	}
	if ch, ok := c.(InvariantChecker); ok {
		m.reg.checkers = append(m.reg.checkers, ch)
	}
	m.reg.names = append(m.reg.names, name)
	m.log.Debug("constraint registered", "constraint", name, "type", c.Type().String())
	return nil
}

// AddSoftFunc registers a bare energy function.
func (m *Model) AddSoftFunc(fn DeltaHFunc) {
	m.reg.soft = append(m.reg.soft, fn)
	m.reg.names = append(m.reg.names, "soft func")
}

// AddHardFunc registers a bare feasibility function.
func (m *Model) AddHardFunc(fn FulfilledFunc) {
	m.reg.hard = append(m.reg.hard, fn)
	m.reg.names = append(m.reg.names, "hard func")
}

// OnMutation registers a bare mutation hook.
func (m *Model) OnMutation(fn func(i Index, oldID, newID CellID)) {
	m.reg.mutation = append(m.reg.mutation, fn)
}

// OnStep registers a bare end-of-step hook.
func (m *Model) OnStep(fn func()) {
	m.reg.step = append(m.reg.step, fn)
}

// Constraints lists the registered constraints by type name, in order.
func (m *Model) Constraints() []string {
	return append([]string(nil), m.reg.names...)
}

// DeltaH sums the registered soft constraints in registration order.
func (m *Model) DeltaH(src, tgt Index, srcID, tgtID CellID) float64 {
	var r float64
	for _, fn := range m.reg.soft {
		r += fn(src, tgt, srcID, tgtID)
	}
	return r
}

// Feasible reports whether every hard constraint accepts the attempt. It stops
// at the first rejection.
func (m *Model) Feasible(src, tgt Index, srcID, tgtID CellID) bool {
	for _, fn := range m.reg.hard {
		if !fn(src, tgt, srcID, tgtID) {
			return false
		}
	}
	return true
}
