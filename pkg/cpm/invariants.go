package cpm

import (
	"errors"
	"fmt"
)

// CheckInvariants recounts volumes and border membership from the lattice
// and compares them with the incremental bookkeeping. Registered constraints
// that implement InvariantChecker are verified as well. It is O(lattice) and
// meant for tests and debug runs.
func (m *Model) CheckInvariants() error {
	counts := map[CellID]int{}
	borderCount := 0
	var buf []Index
	for i := range m.grid.Indices() {
		id := m.grid.At(i)
		if id > 0 {
			counts[id]++
		}
		buf = m.grid.Neighbors(i, buf[:0])
		border := false
		for _, j := range buf {
			if m.grid.At(j) != id {
				border = true
				break
			}
		}
		if border {
			borderCount++
		}
		if border != m.border.Contains(i) {
			return fmt.Errorf("%w: pixel %v border=%v but set membership=%v",
				ErrInvariant, m.grid.IndexToPoint(i), border, m.border.Contains(i))
		}
	}
	if borderCount != m.border.Len() {
		return fmt.Errorf("%w: %d border pixels on the lattice, border set holds %d",
			ErrInvariant, borderCount, m.border.Len())
	}

	live := 0
	for id := 1; id < len(m.cells); id++ {
		rec := m.cells[id]
		n := counts[CellID(id)]
		if !rec.live {
			if n != 0 {
				return fmt.Errorf("%w: retired cell %d still holds %d pixels", ErrInvariant, id, n)
			}
			continue
		}
		live++
		if rec.volume != n {
			return fmt.Errorf("%w: cell %d volume %d, lattice holds %d", ErrInvariant, id, rec.volume, n)
		}
	}
	for id := range counts {
		if int(id) >= len(m.cells) {
			return fmt.Errorf("%w: unallocated identity %d on the lattice", ErrInvariant, id)
		}
	}
	if live != m.liveCells {
		return fmt.Errorf("%w: %d live cells, counter says %d", ErrInvariant, live, m.liveCells)
	}

	var errs []error
	for _, ch := range m.reg.checkers {
		if err := ch.CheckInvariants(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
