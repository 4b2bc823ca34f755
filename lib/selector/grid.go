package selector

import (
	"github.com/golang/geo/r3"

	"github.com/phil-mansfield/boxio/lib/amr"
)

// All selects every cell and every particle.
type All struct{ }

// Grid selects every cell and particle of the grid with the given ID and
// nothing else.
type Grid struct {
	ID int
}

var (
	_ Selector = &All{ }
	_ Selector = &Grid{ }
	_ GridOverlapper = &Grid{ }
)

func (a *All) SelectCell(g *amr.Grid, center r3.Vector) bool { return true }
func (a *All) WholeGrid() bool { return false }

func (a *All) SelectPoints(x, y, z []float64, radius float64) []bool {
	return selectPoints(x, y, z, radius, func(r3.Vector, float64) bool {
		return true
	})
}

func (s *Grid) SelectCell(g *amr.Grid, center r3.Vector) bool {
	return g.ID == s.ID
}

func (s *Grid) OverlapsGrid(g *amr.Grid) bool { return g.ID == s.ID }

// SelectPoints keeps every point. Particles are read one grid at a time, so
// the points passed in already belong to the selected grid.
func (s *Grid) SelectPoints(x, y, z []float64, radius float64) []bool {
	return selectPoints(x, y, z, radius, func(r3.Vector, float64) bool {
		return true
	})
}

func (s *Grid) WholeGrid() bool { return true }
