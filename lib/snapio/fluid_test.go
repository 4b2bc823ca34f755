package snapio

import (
	"encoding/binary"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/boxio/lib/amr"
	g_error "github.com/phil-mansfield/boxio/lib/error"
	"github.com/phil-mansfield/boxio/lib/eq"
	"github.com/phil-mansfield/boxio/lib/selector"
)

// fieldBlock returns the block of a given field of a given grid. Values
// encode all three so misplaced reads are easy to spot.
func fieldBlock(gridID, field, n int) []float64 {
	x := make([]float64, n)
	for i := range x { x[i] = float64(1000*gridID + 100*field + i) }
	return x
}

// cOrder reorders a column-major block so its last index varies fastest.
func cOrder(block []float64, nx, ny, nz int) []float64 {
	out := []float64{ }
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < nz; k++ {
				out = append(out, block[i + nx*(j + ny*k)])
			}
		}
	}
	return out
}

func cubeGrid(id int, file string, offset int64, n int) *amr.Grid {
	return &amr.Grid{
		ID: id, Filename: file, Offset: offset, Dims: []int{n, n, n},
		LeftEdge: [3]float64{0, 0, 0}, RightEdge: [3]float64{1, 1, 1},
	}
}

var multiFileFields = []string{"density", "temperature", "x-velocity"}

// multiFileFS creates two grid files. File "a" holds grid 1 followed by a 16
// byte gap and then grid 0. File "b" holds grid 2 after an 8 byte header.
// The chunks list the grids out of file order and include a grid with no
// data.
func multiFileFS() (*FakeFS, []amr.Chunk) {
	fsys := NewFakeFS()
	fsys.Add("a", binary.LittleEndian,
		fieldBlock(1, 0, 8), fieldBlock(1, 1, 8), fieldBlock(1, 2, 8),
		[]float64{-1, -1},
		fieldBlock(0, 0, 27), fieldBlock(0, 1, 27), fieldBlock(0, 2, 27))
	fsys.Add("b", binary.LittleEndian, []float64{-1},
		fieldBlock(2, 0, 8), fieldBlock(2, 1, 8), fieldBlock(2, 2, 8))

	g0 := cubeGrid(0, "a", 3*8*8 + 16, 3)
	g1 := cubeGrid(1, "a", 0, 2)
	g2 := cubeGrid(2, "b", 8, 2)
	noData := cubeGrid(3, "", 0, 2)
	chunks := []amr.Chunk{
		{Grids: []*amr.Grid{g0, g2}},
		{Grids: []*amr.Grid{noData, g1}},
	}
	return fsys, chunks
}

func TestReadFluidSkipsUnrequested(t *testing.T) {
	ds := amr.NewDataset("", amr.Float64, 3,
		[]string{"density", "temperature"})

	fsys := NewFakeFS()
	fsys.Add("grid", binary.LittleEndian,
		fieldBlock(0, 0, 64), fieldBlock(0, 1, 64))

	rd := NewReader(ds, WithOpener(fsys.Open))
	chunks := []amr.Chunk{{Grids: []*amr.Grid{cubeGrid(0, "grid", 0, 4)}}}
	temp := ds.FluidField("temperature")

	out, err := rd.ReadFluid(chunks, &selector.All{ },
		[]amr.FieldKey{temp}, 64)
	require.NoError(t, err)

	require.Equal(t, 1, len(out))
	require.Equal(t, 64*8, fsys.TotalBytesRead())
	require.Equal(t, 1, fsys.TotalOpens())
	require.Equal(t, 1, fsys.Seeks["grid"])
	require.Equal(t, 1, fsys.Closed)
	require.Equal(t, cOrder(fieldBlock(0, 1, 64), 4, 4, 4), out[temp])
}

func TestReadFluidMultiFile(t *testing.T) {
	ds := amr.NewDataset("", amr.Float64, 3, multiFileFields)

	fields := []amr.FieldKey{ }
	for _, name := range multiFileFields {
		fields = append(fields, ds.FluidField(name))
	}

	fsys, chunks := multiFileFS()
	sel := &selector.All{ }
	size := selector.CountChunks(sel, chunks)
	require.Equal(t, 27 + 8 + 8, size)

	all, err := NewReader(ds, WithOpener(fsys.Open)).
		ReadFluid(chunks, sel, fields, size)
	require.NoError(t, err)
	// One open per file per chunk.
	require.Equal(t, 3, fsys.TotalOpens())
	require.Equal(t, fsys.TotalOpens(), fsys.Closed)

	for f, field := range fields {
		exp := []float64{ }
		exp = append(exp, cOrder(fieldBlock(0, f, 27), 3, 3, 3)...)
		exp = append(exp, cOrder(fieldBlock(2, f, 8), 2, 2, 2)...)
		exp = append(exp, cOrder(fieldBlock(1, f, 8), 2, 2, 2)...)
		if !eq.Float64s(all[field], exp) {
			t.Errorf("%d) Expected %s = %v, got %v.", f, field, exp, all[field])
		}

		// Reading the field on its own gives the same values and only
		// touches that field's bytes.
		fsys, chunks := multiFileFS()
		one, err := NewReader(ds, WithOpener(fsys.Open)).
			ReadFluid(chunks, sel, []amr.FieldKey{field}, size)
		if err != nil {
			t.Errorf("%d) Expected read of %s to succeed, got '%s'.",
				f, field, err.Error())
			continue
		}
		if !eq.Float64s(one[field], all[field]) {
			t.Errorf("%d) Expected %s read alone = %v, got %v.",
				f, field, all[field], one[field])
		}
		if fsys.TotalBytesRead() != size*8 {
			t.Errorf("%d) Expected %d bytes to be read, got %d.",
				f, size*8, fsys.TotalBytesRead())
		}
	}
}

func TestReadFluidRegion(t *testing.T) {
	ds := amr.NewDataset("", amr.Float64, 3, []string{"density"})
	fsys := NewFakeFS()
	fsys.Add("grid", binary.LittleEndian, fieldBlock(0, 0, 64))
	chunks := []amr.Chunk{{Grids: []*amr.Grid{cubeGrid(0, "grid", 0, 4)}}}

	sel := &selector.Region{
		Left: r3.Vector{X: 0, Y: 0, Z: 0}, Right: r3.Vector{X: 0.5, Y: 1, Z: 1},
	}
	size := selector.CountChunks(sel, chunks)
	require.Equal(t, 32, size)

	density := ds.FluidField("density")
	out, err := NewReader(ds, WithOpener(fsys.Open)).
		ReadFluid(chunks, sel, []amr.FieldKey{density}, size)
	require.NoError(t, err)

	// i is the slowest index in selection order, so the kept cells are the
	// first half of the C-ordered block.
	exp := cOrder(fieldBlock(0, 0, 64), 4, 4, 4)[:32]
	require.Equal(t, exp, out[density])
}

func TestReadFluidNonCubic(t *testing.T) {
	ds := amr.NewDataset("", amr.Float64, 3, []string{"density", "pressure"})
	fsys := NewFakeFS()
	fsys.Add("grid", binary.LittleEndian, fieldBlock(0, 0, 24),
		fieldBlock(0, 1, 24))
	g := &amr.Grid{
		ID: 0, Filename: "grid", Dims: []int{4, 2, 3},
		LeftEdge: [3]float64{0, 0, 0}, RightEdge: [3]float64{1, 1, 1},
	}
	chunks := []amr.Chunk{{Grids: []*amr.Grid{g}}}
	pressure := ds.FluidField("pressure")

	tests := []struct {
		sel selector.Selector
		exp []float64
	}{
		{&selector.All{ }, cOrder(fieldBlock(0, 1, 24), 4, 2, 3)},
		// Only k = 0.
		{&selector.Region{
			Left: r3.Vector{X: 0, Y: 0, Z: 0},
			Right: r3.Vector{X: 1, Y: 1, Z: 0.3},
		}, []float64{100, 104, 101, 105, 102, 106, 103, 107}},
		// Only i = 3.
		{&selector.Region{
			Left: r3.Vector{X: 0.75, Y: 0, Z: 0},
			Right: r3.Vector{X: 1, Y: 1, Z: 1},
		}, []float64{103, 111, 119, 107, 115, 123}},
	}

	for i := range tests {
		size := selector.CountChunks(tests[i].sel, chunks)
		out, err := NewReader(ds, WithOpener(fsys.Open)).
			ReadFluid(chunks, tests[i].sel, []amr.FieldKey{pressure}, size)
		if err != nil {
			t.Errorf("%d) Expected read to succeed, got '%s'.", i, err.Error())
			continue
		}
		if !eq.Float64s(out[pressure], tests[i].exp) {
			t.Errorf("%d) Expected pressure = %v, got %v.",
				i, tests[i].exp, out[pressure])
		}
	}
}

func TestReadFluidBigEndian(t *testing.T) {
	dt, err := amr.ParseDType(">f4")
	require.NoError(t, err)
	ds := amr.NewDataset("", dt, 3, []string{"density", "pressure"})

	fsys := NewFakeFS()
	fsys.Add("grid", binary.BigEndian,
		[]float32{1, 2, 3, 4, 5, 6, 7, 8},
		[]float32{10, 20, 30, 40, 50, 60, 70, 80})
	chunks := []amr.Chunk{{Grids: []*amr.Grid{cubeGrid(0, "grid", 0, 2)}}}

	pressure := ds.FluidField("pressure")
	out, err := NewReader(ds, WithOpener(fsys.Open)).
		ReadFluid(chunks, &selector.All{ }, []amr.FieldKey{pressure}, 8)
	require.NoError(t, err)
	require.Equal(t, 8*4, fsys.TotalBytesRead())

	exp := cOrder([]float64{10, 20, 30, 40, 50, 60, 70, 80}, 2, 2, 2)
	require.Equal(t, exp, out[pressure])

	fsys = NewFakeFS()
	fsys.Add("grid", binary.BigEndian,
		[]float32{1, 2, 3, 4, 5, 6, 7, 8},
		[]float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8})
	out, err = NewReader(ds, WithOpener(fsys.Open)).
		ReadFluid(chunks, &selector.All{ }, []amr.FieldKey{pressure}, 8)
	require.NoError(t, err)

	exp = cOrder([]float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8}, 2, 2, 2)
	if !eq.Float64sEps(out[pressure], exp, 1e-7) {
		t.Errorf("Expected pressure = %v, got %v.", exp, out[pressure])
	}
}

func TestReadFluidNoFields(t *testing.T) {
	ds := amr.NewDataset("", amr.Float64, 3, []string{"density"})
	fsys, chunks := multiFileFS()

	out, err := NewReader(ds, WithOpener(fsys.Open)).
		ReadFluid(chunks, &selector.All{ }, nil, 43)
	require.NoError(t, err)
	require.Empty(t, out)
	require.Equal(t, 0, fsys.TotalOpens())
}

func TestReadFluidErrors(t *testing.T) {
	ds := amr.NewDataset("", amr.Float64, 3, multiFileFields)
	density := ds.FluidField("density")

	fsys, chunks := multiFileFS()
	rd := NewReader(ds, WithOpener(fsys.Open))
	sel := &selector.All{ }

	_, err := rd.ReadFluid(chunks, sel,
		[]amr.FieldKey{density, {Type: "DM", Name: "particle_mass"}}, 43)
	require.True(t, errors.Is(err, g_error.ErrUnsupportedFieldType))
	require.Equal(t, 0, fsys.TotalOpens())

	_, err = rd.ReadFluid(chunks, sel,
		[]amr.FieldKey{ds.FluidField("magnetic-field")}, 43)
	require.True(t, errors.Is(err, g_error.ErrUnknownField))
	require.Equal(t, 0, fsys.TotalOpens())

	for _, size := range []int{42, 44} {
		_, err = rd.ReadFluid(chunks, sel, []amr.FieldKey{density}, size)
		require.True(t, errors.Is(err, g_error.ErrInvariantViolation),
			"size = %d", size)
	}

	// Blocks that run off the end of the file.
	short := NewFakeFS()
	short.AddBytes("grid", make([]byte, 8*8 + 3))
	shortChunks := []amr.Chunk{{Grids: []*amr.Grid{cubeGrid(0, "grid", 0, 2)}}}
	_, err = NewReader(ds, WithOpener(short.Open)).ReadFluid(shortChunks, sel,
		[]amr.FieldKey{ds.FluidField("temperature")}, 8)
	require.Error(t, err)
	require.Equal(t, 1, short.Closed)
}

func TestReadFluidMissingFile(t *testing.T) {
	ds := amr.NewDataset("", amr.Float64, 3, []string{"density"})
	fileName := filepath.Join(t.TempDir(), "Cell_D_00000")
	chunks := []amr.Chunk{{Grids: []*amr.Grid{cubeGrid(0, fileName, 0, 2)}}}

	_, err := NewReader(ds).ReadFluid(chunks, &selector.All{ },
		[]amr.FieldKey{ds.FluidField("density")}, 8)
	require.Error(t, err)
	require.True(t, errors.Is(err, fs.ErrNotExist))
}
