package cpm

import "math"

// Step runs one Monte Carlo step. Each copy attempt consumes 1/|border| of the
// step, so the number of attempts tracks the border size as it changes.
//
// Per attempt the stream is drawn in a fixed order: source pixel, target
// neighbor, and (only when the energy does not decrease) the acceptance draw.
// Step panics with ErrContractViolation when the lattice has no border.
func (m *Model) Step() {
	if m.border.Len() == 0 {
		panic(contractViolation("monte carlo step on a lattice without border pixels"))
	}
	var elapsed float64
	for elapsed < 1 {
		n := m.border.Len()
		if n == 0 {
			// The lattice became uniform; no attempt can change it.
			break
		}
		elapsed += 1 / float64(n)

		src := m.border.Sample()
		m.stepBuf = m.grid.Neighbors(src, m.stepBuf[:0])
		if len(m.stepBuf) == 0 {
			continue
		}
		tgt := m.stepBuf[m.rng.IntN(len(m.stepBuf))]

		srcID := m.grid.At(src)
		tgtID := m.grid.At(tgt)
		if tgtID < 0 || srcID == tgtID {
			continue
		}
		if !m.Feasible(src, tgt, srcID, tgtID) {
			continue
		}
		if m.accept(m.DeltaH(src, tgt, srcID, tgtID)) {
			m.Mutate(tgt, srcID)
		}
	}
	m.time++
	for _, fn := range m.reg.step {
		fn()
	}
	if m.debug {
		if err := m.CheckInvariants(); err != nil {
			panic(err)
		}
	}
}

// Run executes n Monte Carlo steps.
func (m *Model) Run(n int) {
	for k := 0; k < n; k++ {
		m.Step()
	}
}

func (m *Model) accept(dH float64) bool {
	if dH < 0 {
		return true
	}
	return m.rng.Float64() < math.Exp(-dH/m.temperature)
}

// Mutate writes id into pixel i and updates volumes, the border set and every
// registered mutation hook. It is the only entry point that changes the
// lattice. Writing the identity a pixel already holds is a no-op.
//
// Hooks run synchronously after the state is committed and must not call
// Mutate themselves.
func (m *Model) Mutate(i Index, id CellID) {
	old := m.grid.At(i)
	if old == id {
		return
	}
	if id > 0 && !m.Alive(id) {
		panic(contractViolation("identity %d is not a live cell", id))
	}
	if old > 0 {
		rec := &m.cells[old]
		rec.volume--
		if rec.volume == 0 {
			rec.live = false
			rec.kind = 0
			m.liveCells--
			m.log.Debug("cell retired", "id", int(old), "time", m.time)
		}
	}
	m.grid.Set(i, id)
	if id > 0 {
		m.cells[id].volume++
	}
	m.updateBorder(i, old, id)
	for _, fn := range m.reg.mutation {
		fn(i, old, id)
	}
}

// SetPixelAt is Mutate addressed by coordinate.
func (m *Model) SetPixelAt(p Point, id CellID) { m.Mutate(m.grid.PointToIndex(p), id) }

// updateBorder restores border membership around i after its identity changed
// from old to cur. Only i and its direct neighbors can be affected.
func (m *Model) updateBorder(i Index, old, cur CellID) {
	m.mutBuf = m.grid.Neighbors(i, m.mutBuf[:0])

	isBorder := false
	for _, j := range m.mutBuf {
		if m.grid.At(j) != cur {
			isBorder = true
			break
		}
	}
	if isBorder {
		m.border.Insert(i)
	} else {
		m.border.Remove(i)
	}

	for _, j := range m.mutBuf {
		t := m.grid.At(j)
		if t != cur {
			// i now differs from j. If j used to match i it may have just
			// become a border pixel; otherwise it already was one.
			if t == old {
				m.border.Insert(j)
			}
			continue
		}
		// j already held cur, which differed from the old identity of i, so
		// it was a border pixel. It stays one only if some neighbor differs.
		if !m.differsFromNeighbors(j, t) {
			m.border.Remove(j)
		}
	}
}

func (m *Model) differsFromNeighbors(j Index, t CellID) bool {
	m.nbrBuf = m.grid.Neighbors(j, m.nbrBuf[:0])
	for _, k := range m.nbrBuf {
		if m.grid.At(k) != t {
			return true
		}
	}
	return false
}
