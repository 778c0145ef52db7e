package cpm

import (
	"errors"
	"fmt"

	"cellpotts/pkg/lattice"
)

var (
	// ErrConfiguration marks models, lattices or constraints that cannot be
	// built from the supplied parameters.
	ErrConfiguration = lattice.ErrConfiguration
	// ErrContractViolation marks misuse of the engine surface, such as
	// registering a constraint without its required capability or stepping a
	// lattice that has no border pixels.
	ErrContractViolation = errors.New("contract violation")
	// ErrInvariant is returned by CheckInvariants when bookkeeping drifts from
	// the lattice.
	ErrInvariant = errors.New("invariant violated")
)

func contractViolation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrContractViolation, fmt.Sprintf(format, args...))
}
