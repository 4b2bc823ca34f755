/*package amr contains the descriptors boxio reads against: grids, particle
sets, particle headers and the dataset-wide index that owns them. Nothing in
boxio mutates these objects once they've been built; readers only look at
file names, offsets, dimensions and edges.
*/
package amr

import (
	"fmt"
)

const (
	// DefaultFluidType is the type tag used for grid fluid fields when a
	// dataset doesn't specify one.
	DefaultFluidType = "boxlib"
)

// FieldKey identifies a field within a type namespace. Type is either the
// dataset's fluid type or the name of a particle type.
type FieldKey struct {
	Type, Name string
}

func (k FieldKey) String() string { return fmt.Sprintf("(%s, %s)", k.Type, k.Name) }

// Grid describes a single rectangular patch of cells.
type Grid struct {
	// ID is used as a map key within a single read.
	ID int
	// Filename is the file that contains the grid's fluid data. An empty
	// Filename means the grid has no data on disk.
	Filename string
	// Offset is the byte offset of the first field block of the grid.
	Offset int64
	// Dims gives the number of active cells along each axis.
	Dims []int
	// LeftEdge and RightEdge give the spatial bounds of the grid.
	LeftEdge, RightEdge [3]float64

	// Particles maps particle type names to the binary particle sets owned
	// by this grid.
	Particles map[string]*ParticleSet

	// NumberOfParticles and ParticleLines describe the text sink particles
	// owned by this grid. ParticleLines are line numbers in the sink file.
	NumberOfParticles int
	ParticleLines []int
}

// ParticleSet describes the binary particles of one type owned by a grid.
type ParticleSet struct {
	// N is the number of particles.
	N int
	Filename string
	// Offset is the start of the integer block.
	Offset int64
}

// Chunk is a group of grids that are read together.
type Chunk struct {
	Grids []*Grid
}

// Shape returns the grid's dimensions padded out to three axes with 1s.
func (g *Grid) Shape() [3]int {
	shape := [3]int{1, 1, 1}
	for dim := 0; dim < len(g.Dims) && dim < 3; dim++ {
		shape[dim] = g.Dims[dim]
	}
	return shape
}

// CellCount returns the number of active cells in the grid.
func (g *Grid) CellCount() int {
	if len(g.Dims) == 0 { return 0 }
	n := 1
	for _, d := range g.Dims { n *= d }
	return n
}

// FortranIndex returns the index of cell (i, j, k) in a column-major block,
// i.e. a block where the first index varies fastest.
func (g *Grid) FortranIndex(i, j, k int) int {
	shape := g.Shape()
	return i + shape[0]*(j + shape[1]*k)
}

// CellCenter returns the spatial center of cell (i, j, k). Axes beyond the
// grid's dimensionality sit at the midpoint of the grid's edges.
func (g *Grid) CellCenter(i, j, k int) [3]float64 {
	shape := g.Shape()
	idx := [3]int{i, j, k}
	var c [3]float64
	for dim := 0; dim < 3; dim++ {
		dx := (g.RightEdge[dim] - g.LeftEdge[dim]) / float64(shape[dim])
		c[dim] = g.LeftEdge[dim] + (float64(idx[dim]) + 0.5)*dx
	}
	return c
}

// Dataset is the index that owns the metadata shared by every grid.
type Dataset struct {
	// FluidType is the type tag of every grid fluid field.
	FluidType string
	// DType is the on-disk type of fluid data.
	DType DType
	// FieldOrder is the on-disk order of the fluid field blocks within each
	// grid. It's the same for every grid.
	FieldOrder []FieldKey
	// Dimensionality is 2 or 3.
	Dimensionality int
	// ParticleHeaders maps particle type names to their headers.
	ParticleHeaders map[string]*ParticleHeader
	// Unions maps composite particle types to their ordered members.
	Unions map[string][]string
	// OutputDir is the directory holding the text sink particle files.
	OutputDir string
}

// NewDataset creates a Dataset whose field order is made of the given fluid
// field names in on-disk order.
func NewDataset(
	fluidType string, dtype DType, dimensionality int, fieldOrder []string,
) *Dataset {
	if fluidType == "" { fluidType = DefaultFluidType }
	ds := &Dataset{
		FluidType: fluidType, DType: dtype, Dimensionality: dimensionality,
		ParticleHeaders: map[string]*ParticleHeader{ },
		Unions: map[string][]string{ },
	}
	for _, name := range fieldOrder {
		ds.FieldOrder = append(ds.FieldOrder, FieldKey{fluidType, name})
	}
	return ds
}

// FluidField returns the key of a fluid field with the given name.
func (ds *Dataset) FluidField(name string) FieldKey {
	return FieldKey{ds.FluidType, name}
}
