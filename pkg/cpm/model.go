// Package cpm implements the Cellular Potts Model engine: a lattice of cell
// identities evolved by Metropolis pixel-copy attempts under a set of
// pluggable energy and feasibility constraints.
package cpm

import (
	"fmt"
	"io"
	"iter"
	"log/slog"
	"math"

	"cellpotts/pkg/core"
	"cellpotts/pkg/diceset"
	"cellpotts/pkg/lattice"
)

// Re-exported lattice types so that constraint code only imports cpm.
type (
	Index  = lattice.Index
	CellID = lattice.CellID
	Point  = lattice.Point
)

// Background is the identity of unoccupied pixels.
const Background = lattice.Background

// Config holds the construction parameters of a Model.
type Config struct {
	// Extents lists the lattice size per axis (2 or 3 values).
	Extents []int
	// Torus holds per-axis wraparound flags; empty means every axis wraps.
	Torus []bool
	// Seed initialises the model's random stream.
	Seed uint64
	// Temperature scales the Metropolis acceptance probability.
	Temperature float64
}

// Option customises a Model at construction.
type Option func(*Model)

// WithLogger routes engine diagnostics to l.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.log = l
		}
	}
}

// WithDebug enables a full invariant check after every Monte Carlo step.
// Violations panic.
func WithDebug(on bool) Option {
	return func(m *Model) { m.debug = on }
}

type cellRecord struct {
	kind   int
	volume int
	live   bool
}

// Model owns the lattice, per-cell bookkeeping, the border set, the
// constraint registry and the random stream.
type Model struct {
	grid   *lattice.Grid
	rng    *core.RNG
	border *diceset.Set[Index]

	// cells is indexed by identity; slot 0 is the background.
	cells     []cellRecord
	liveCells int
	// negKinds holds kinds assigned to negative (impassable) identities.
	negKinds map[CellID]int

	temperature float64
	time        int
	reg         registry

	log   *slog.Logger
	debug bool

	stepBuf []Index
	mutBuf  []Index
	nbrBuf  []Index
}

// New builds an empty model: every pixel is background and no cell exists.
func New(cfg Config, opts ...Option) (*Model, error) {
	grid, err := lattice.New(cfg.Extents, cfg.Torus)
	if err != nil {
		return nil, err
	}
	if !(cfg.Temperature > 0) || math.IsInf(cfg.Temperature, 0) {
		return nil, fmt.Errorf("%w: temperature must be positive and finite, got %v", ErrConfiguration, cfg.Temperature)
	}
	rng := core.NewRNG(cfg.Seed)
	m := &Model{
		grid:        grid,
		rng:         rng,
		border:      diceset.New[Index](rng),
		cells:       []cellRecord{{kind: 0, live: true}},
		negKinds:    map[CellID]int{},
		temperature: cfg.Temperature,
		log:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log.Debug("model created", "extents", cfg.Extents, "seed", cfg.Seed, "temperature", cfg.Temperature)
	return m, nil
}

// Grid exposes the lattice for read access. Writes must go through Mutate.
func (m *Model) Grid() *lattice.Grid { return m.grid }

// Dim returns the number of lattice axes.
func (m *Model) Dim() int { return m.grid.Dim() }

// Extents returns the lattice size per axis.
func (m *Model) Extents() []int { return m.grid.Extents() }

// Midpoint returns the central pixel of the lattice.
func (m *Model) Midpoint() Point { return m.grid.Midpoint() }

// NumNeighbors returns the size of a full Moore neighborhood.
func (m *Model) NumNeighbors() int { return m.grid.NumNeighbors() }

// PointToIndex packs a coordinate.
func (m *Model) PointToIndex(p Point) Index { return m.grid.PointToIndex(p) }

// IndexToPoint unpacks an index.
func (m *Model) IndexToPoint(i Index) Point { return m.grid.IndexToPoint(i) }

// Neighbors appends the neighbors of i to dst.
func (m *Model) Neighbors(i Index, dst []Index) []Index { return m.grid.Neighbors(i, dst) }

// Pixel returns the identity occupying pixel i.
func (m *Model) Pixel(i Index) CellID { return m.grid.At(i) }

// PixelAt returns the identity occupying coordinate p.
func (m *Model) PixelAt(p Point) CellID { return m.grid.At(m.grid.PointToIndex(p)) }

// Time returns the number of completed Monte Carlo steps.
func (m *Model) Time() int { return m.time }

// Temperature returns the Metropolis temperature.
func (m *Model) Temperature() float64 { return m.temperature }

// SetTemperature changes the Metropolis temperature between steps.
func (m *Model) SetTemperature(t float64) error {
	if !(t > 0) || math.IsInf(t, 0) {
		return fmt.Errorf("%w: temperature must be positive and finite, got %v", ErrConfiguration, t)
	}
	m.temperature = t
	return nil
}

// Random draws a uniform value in [0, 1) from the model's stream.
func (m *Model) Random() float64 { return m.rng.Float64() }

// RandomInt draws a uniform integer in [lo, hi] from the model's stream.
func (m *Model) RandomInt(lo, hi int) int { return m.rng.Between(lo, hi) }

// AllocateCell creates a new identity of the given kind with volume zero. No
// pixel is placed. Identities are never reused.
func (m *Model) AllocateCell(kind int) CellID {
	id := CellID(len(m.cells))
	m.cells = append(m.cells, cellRecord{kind: kind, live: true})
	m.liveCells++
	return id
}

// Volume returns the number of pixels held by id. Background, impassable and
// retired identities have volume 0.
func (m *Model) Volume(id CellID) int {
	if id <= 0 || int(id) >= len(m.cells) {
		return 0
	}
	return m.cells[id].volume
}

// CellKind returns the kind of id. Background and unknown identities report
// kind 0.
func (m *Model) CellKind(id CellID) int {
	if id < 0 {
		return m.negKinds[id]
	}
	if int(id) >= len(m.cells) || !m.cells[id].live {
		return 0
	}
	return m.cells[id].kind
}

// SetKind reassigns the kind of id. Negative identities may carry a kind so
// that impassable regions can take part in adhesion.
func (m *Model) SetKind(id CellID, kind int) {
	switch {
	case id < 0:
		m.negKinds[id] = kind
	case id == Background:
		panic(contractViolation("the background kind is fixed"))
	case int(id) >= len(m.cells) || !m.cells[id].live:
		panic(contractViolation("identity %d is not a live cell", id))
	default:
		m.cells[id].kind = kind
	}
}

// Alive reports whether id is an allocated, not yet retired cell.
func (m *Model) Alive(id CellID) bool {
	return id > 0 && int(id) < len(m.cells) && m.cells[id].live
}

// NumCells returns the number of live cells.
func (m *Model) NumCells() int { return m.liveCells }

// CellIDs yields the live cell identities in allocation order.
func (m *Model) CellIDs() iter.Seq[CellID] {
	return func(yield func(CellID) bool) {
		for id := 1; id < len(m.cells); id++ {
			if !m.cells[id].live {
				continue
			}
			if !yield(CellID(id)) {
				return
			}
		}
	}
}

// CellPixels yields the coordinate and identity of every non-background
// pixel.
func (m *Model) CellPixels() iter.Seq2[Point, CellID] { return m.grid.Pixels() }

// BorderPixels yields the coordinate and identity of every non-background
// border pixel.
func (m *Model) BorderPixels() iter.Seq2[Point, CellID] {
	return func(yield func(Point, CellID) bool) {
		for i := range m.border.All() {
			id := m.grid.At(i)
			if id == Background {
				continue
			}
			if !yield(m.grid.IndexToPoint(i), id) {
				return
			}
		}
	}
}

// BorderIndices yields every border pixel index, background included.
func (m *Model) BorderIndices() iter.Seq[Index] { return m.border.All() }

// BorderSize returns the number of border pixels.
func (m *Model) BorderSize() int { return m.border.Len() }

// IsBorder reports whether pixel i has a differently occupied neighbor.
func (m *Model) IsBorder(i Index) bool { return m.border.Contains(i) }
