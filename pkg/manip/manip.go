// Package manip changes cells between Monte Carlo steps: division and death.
package manip

import (
	"fmt"
	"math"

	"cellpotts/pkg/cpm"
	"cellpotts/pkg/stats"
)

// KillCell marks id as dead by moving it to deadKind. Its pixels stay where
// they are; the dead kind's parameters decide what happens to them.
func KillCell(m *cpm.Model, id cpm.CellID, deadKind int) {
	m.SetKind(id, deadKind)
}

// KillTooSmallCells kills, each with the given probability, the cells of kind
// whose volume is below lowerBound·target. It returns the killed cells.
func KillTooSmallCells(m *cpm.Model, kind int, target, probability, lowerBound float64, deadKind int) []cpm.CellID {
	var killed []cpm.CellID
	for _, id := range stats.SortedIDs(stats.CellIndices(m)) {
		if m.CellKind(id) != kind || float64(m.Volume(id)) >= target*lowerBound {
			continue
		}
		if m.Random() < probability {
			KillCell(m, id, deadKind)
			killed = append(killed, id)
		}
	}
	return killed
}

// DivideCell2D splits id along the line through its centroid perpendicular
// to its long axis. The pixels on one side go to a new cell of the same kind,
// whose identity is returned.
func DivideCell2D(m *cpm.Model, id cpm.CellID) (cpm.CellID, error) {
	if m.Dim() != 2 {
		return 0, fmt.Errorf("%w: division is only defined on 2D lattices", cpm.ErrContractViolation)
	}
	if m.Volume(id) < 2 {
		return 0, fmt.Errorf("%w: cell %d is too small to divide", cpm.ErrContractViolation, id)
	}
	var pixels []cpm.Point
	for p, t := range m.CellPixels() {
		if t == id {
			pixels = append(pixels, p)
		}
	}
	return divide(m, id, pixels), nil
}

func divide(m *cpm.Model, id cpm.CellID, pixels []cpm.Point) cpm.CellID {
	com := stats.CentroidTorus(m, pixels)
	rel := make([][2]float64, len(pixels))
	var bxx, bxy, byy float64
	for k, p := range pixels {
		cx, cy := offset(m, com, p, 0), offset(m, com, p, 1)
		rel[k] = [2]float64{cx, cy}
		bxx += cx * cx
		bxy += cx * cy
		byy += cy * cy
	}

	// (x1, y1) points along the minor axis of the second moment matrix.
	var x1, y1 float64
	switch {
	case bxy != 0:
		tr, det := bxx+byy, bxx*byy-bxy*bxy
		minor := tr/2 - math.Sqrt(tr*tr/4-det)
		x1, y1 = minor-byy, bxy
	case bxx >= byy:
		x1, y1 = 0, 1
	default:
		x1, y1 = 1, 0
	}

	nid := m.AllocateCell(m.CellKind(id))
	for k, p := range pixels {
		if x1*rel[k][1]-rel[k][0]*y1 > 0 {
			m.SetPixelAt(p, nid)
		}
	}
	return nid
}

// offset is p[d]-c[d], taken the short way around toroidal axes.
func offset(m *cpm.Model, c stats.Vec, p cpm.Point, d int) float64 {
	v := float64(p[d]) - c[d]
	g := m.Grid()
	if g.Torus(d) {
		ext := float64(g.Extent(d))
		if v > ext/2 {
			v -= ext
		} else if v < -ext/2 {
			v += ext
		}
	}
	return v
}

// DivideCells2D divides, each with the given probability, the cells of kind
// holding at least minVolume pixels. It returns the daughter cells.
func DivideCells2D(m *cpm.Model, kind int, probability float64, minVolume int) ([]cpm.CellID, error) {
	if m.Dim() != 2 {
		return nil, fmt.Errorf("%w: division is only defined on 2D lattices", cpm.ErrContractViolation)
	}
	byCell := stats.CellPixels(m)
	var born []cpm.CellID
	for _, id := range stats.SortedIDs(byCell) {
		if m.CellKind(id) != kind || m.Volume(id) < minVolume || m.Volume(id) < 2 {
			continue
		}
		if m.Random() < probability {
			born = append(born, divide(m, id, byCell[id]))
		}
	}
	return born, nil
}
