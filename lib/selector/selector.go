/*package selector contains the predicates boxio uses to decide which cells
and particles are kept by a read. Every selector can test cell centers and
particle positions. Selectors that can cheaply reject entire grids also
implement GridOverlapper.
*/
package selector

import (
	"github.com/golang/geo/r3"

	"github.com/phil-mansfield/boxio/lib/amr"
)

// Selector is a spatial predicate over cells and particles.
type Selector interface {
	// SelectCell returns true if the cell of g centered at center is kept.
	SelectCell(g *amr.Grid, center r3.Vector) bool
	// SelectPoints returns a mask over the points (x[i], y[i], z[i]), each
	// with the given smoothing radius. nil is returned if no point is kept.
	SelectPoints(x, y, z []float64, radius float64) []bool
	// WholeGrid returns true if the selector picks out exactly one entire
	// grid. Readers use this to skip chunk iteration.
	WholeGrid() bool
}

// GridOverlapper is implemented by selectors which can tell that a grid
// contains no kept cells without visiting them.
type GridOverlapper interface {
	OverlapsGrid(g *amr.Grid) bool
}

// Select copies the kept cells of block into dest, starting at dest[start],
// and returns the number of kept cells. block must be column-major ordered
// with g's dimensions. Cells are visited with the last index varying
// fastest. Values which would land past the end of dest are counted but not
// written, so callers can detect an undersized buffer from the return value.
// If block is nil, nothing is written.
func Select(sel Selector, g *amr.Grid, block, dest []float64, start int) int {
	if o, ok := sel.(GridOverlapper); ok && !o.OverlapsGrid(g) {
		return 0
	}

	shape := g.Shape()
	n := 0
	for i := 0; i < shape[0]; i++ {
		for j := 0; j < shape[1]; j++ {
			for k := 0; k < shape[2]; k++ {
				c := g.CellCenter(i, j, k)
				if !sel.SelectCell(g, r3.Vector{X: c[0], Y: c[1], Z: c[2]}) {
					continue
				}

				idx := start + n
				if block != nil && idx >= 0 && idx < len(dest) {
					dest[idx] = block[g.FortranIndex(i, j, k)]
				}
				n++
			}
		}
	}

	return n
}

// Count returns the number of cells in g that sel keeps.
func Count(sel Selector, g *amr.Grid) int {
	return Select(sel, g, nil, nil, 0)
}

// CountChunks returns the number of kept cells summed over every grid with
// data on disk. This is the output size a fluid read needs.
func CountChunks(sel Selector, chunks []amr.Chunk) int {
	n := 0
	for _, chunk := range chunks {
		for _, g := range chunk.Grids {
			if g.Filename == "" { continue }
			n += Count(sel, g)
		}
	}
	return n
}

// selectPoints builds a point mask from a containment test.
func selectPoints(
	x, y, z []float64, radius float64,
	contains func(p r3.Vector, radius float64) bool,
) []bool {
	mask := make([]bool, len(x))
	found := false
	for i := range x {
		if contains(r3.Vector{X: x[i], Y: y[i], Z: z[i]}, radius) {
			mask[i] = true
			found = true
		}
	}

	if !found { return nil }
	return mask
}

// component returns the dim-th component of v.
func component(v r3.Vector, dim int) float64 {
	switch dim {
	case 0: return v.X
	case 1: return v.Y
	}
	return v.Z
}
