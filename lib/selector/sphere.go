package selector

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/phil-mansfield/boxio/lib/amr"
)

// Sphere selects everything within Radius of Center.
type Sphere struct {
	Center r3.Vector
	Radius float64
}

var (
	_ Selector = &Sphere{ }
	_ GridOverlapper = &Sphere{ }
)

func (s *Sphere) SelectCell(g *amr.Grid, center r3.Vector) bool {
	return s.contains(center, 0)
}

func (s *Sphere) SelectPoints(x, y, z []float64, radius float64) []bool {
	return selectPoints(x, y, z, radius, s.contains)
}

func (s *Sphere) WholeGrid() bool { return false }

// OverlapsGrid returns true if the point of the grid closest to Center is
// within Radius.
func (s *Sphere) OverlapsGrid(g *amr.Grid) bool {
	var closest [3]float64
	for dim := 0; dim < 3; dim++ {
		c := component(s.Center, dim)
		closest[dim] = math.Max(g.LeftEdge[dim], math.Min(c, g.RightEdge[dim]))
	}
	p := r3.Vector{X: closest[0], Y: closest[1], Z: closest[2]}
	return p.Sub(s.Center).Norm() <= s.Radius
}

func (s *Sphere) contains(p r3.Vector, radius float64) bool {
	return p.Sub(s.Center).Norm() <= s.Radius + radius
}
