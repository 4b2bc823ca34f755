package selector

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/phil-mansfield/boxio/lib/amr"
)

// Region selects everything inside the box [Left, Right). If a component of
// Period is positive, that axis wraps with the given period and Right may be
// larger than the domain edge.
type Region struct {
	Left, Right r3.Vector
	Period r3.Vector
}

var (
	_ Selector = &Region{ }
	_ GridOverlapper = &Region{ }
)

func (r *Region) SelectCell(g *amr.Grid, center r3.Vector) bool {
	return r.contains(center, 0)
}

func (r *Region) SelectPoints(x, y, z []float64, radius float64) []bool {
	return selectPoints(x, y, z, radius, r.contains)
}

func (r *Region) WholeGrid() bool { return false }

// OverlapsGrid returns true if the grid's bounding box touches the region.
func (r *Region) OverlapsGrid(g *amr.Grid) bool {
	for dim := 0; dim < 3; dim++ {
		start1, end1 := component(r.Left, dim), component(r.Right, dim)
		start2, end2 := g.LeftEdge[dim], g.RightEdge[dim]
		L := component(r.Period, dim)

		if L > 0 {
			if !periodicRangeOverlap(start1, end1, start2, end2, L) {
				return false
			}
		} else if end1 <= start2 || end2 <= start1 {
			return false
		}
	}
	return true
}

// contains returns true if p is within radius of the region.
func (r *Region) contains(p r3.Vector, radius float64) bool {
	for dim := 0; dim < 3; dim++ {
		start := component(r.Left, dim) - radius
		end := component(r.Right, dim) + radius
		x := component(p, dim)
		L := component(r.Period, dim)

		if L > 0 {
			if !periodicRangeContains(start, end, x, L) { return false }
		} else if x < start || x >= end {
			return false
		}
	}
	return true
}

// periodicRangeContains returns true if x is within [start, end) for a
// periodic axis of width L. end may be larger than start + L, in which case
// the whole axis is contained.
func periodicRangeContains(start, end, x, L float64) bool {
	if end - start >= L { return true }
	d := math.Mod(x - start, L)
	if d < 0 { d += L }
	return d < end - start
}

// periodicRangeOverlap returns true if two periodic ranges [start1, end1)
// and [start2, end2) overlap and false otherwise.
func periodicRangeOverlap(start1, end1, start2, end2, L float64) bool {
	return periodicRangeContains(start1, end1, start2, L) ||
		periodicRangeContains(start2, end2, start1, L)
}
