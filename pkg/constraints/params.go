// Package constraints provides the standard Cellular Potts energy terms and
// feasibility checks. Every parameter slice is indexed by cell kind; kinds
// beyond the end of a slice read as zero.
package constraints

import (
	"fmt"

	"cellpotts/pkg/cpm"
)

func at[T int | float64](s []T, k int) T {
	if k < 0 || k >= len(s) {
		return 0
	}
	return s[k]
}

func requireKinds(name string, n int) error {
	if n == 0 {
		return fmt.Errorf("%w: %s needs at least one kind", cpm.ErrConfiguration, name)
	}
	return nil
}

func requireSameLength(name string, a, b int) error {
	if a != b {
		return fmt.Errorf("%w: %s parameter lists differ in length (%d vs %d)", cpm.ErrConfiguration, name, a, b)
	}
	return nil
}
